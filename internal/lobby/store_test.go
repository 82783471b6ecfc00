// internal/lobby/store_test.go
package lobby

import (
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewStore(log)
}

var codePattern = regexp.MustCompile(`^\d{6}$`)

func TestCreate(t *testing.T) {
	s := newTestStore()

	l := s.Create("alice")
	assert.Regexp(t, codePattern, l.Code)
	assert.Equal(t, "alice", l.Host)
	assert.Equal(t, StatusWaiting, l.Status)
	require.Len(t, l.Players, 1)
	assert.Equal(t, "alice", l.Players[0].Username)
	assert.False(t, l.Players[0].Ready)
}

func TestCreateCodesDoNotCollide(t *testing.T) {
	s := newTestStore()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		l := s.Create("host")
		assert.False(t, seen[l.Code], "code %s reused while lobby still active", l.Code)
		seen[l.Code] = true
	}
	assert.Len(t, s.List(), 200)
}

func TestJoin(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	l, err := s.Join(code, "bob")
	require.NoError(t, err)
	require.Len(t, l.Players, 2)
	assert.Equal(t, "bob", l.Players[1].Username)
	assert.Equal(t, StatusWaiting, l.Status)
}

func TestJoinNotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.Join("000000", "bob")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestJoinFull(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code
	_, err := s.Join(code, "bob")
	require.NoError(t, err)

	_, err = s.Join(code, "carol")
	assert.ErrorIs(t, err, ErrLobbyFull)

	l, ok := s.Get(code)
	require.True(t, ok)
	assert.Len(t, l.Players, 2, "failed join must not grow the member list")
}

func TestSetReadyTransition(t *testing.T) {
	// Both orderings of the two ready toggles end in playing.
	orders := [][2]string{{"alice", "bob"}, {"bob", "alice"}}
	for _, order := range orders {
		s := newTestStore()
		code := s.Create("alice").Code
		_, err := s.Join(code, "bob")
		require.NoError(t, err)

		l, started, ok := s.SetReady(code, order[0], true)
		require.True(t, ok)
		assert.False(t, started)
		assert.Equal(t, StatusWaiting, l.Status)

		l, started, ok = s.SetReady(code, order[1], true)
		require.True(t, ok)
		assert.True(t, started)
		assert.Equal(t, StatusPlaying, l.Status)
	}
}

func TestSetReadySingleMemberNeverStarts(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	l, started, ok := s.SetReady(code, "alice", true)
	require.True(t, ok)
	assert.False(t, started)
	assert.Equal(t, StatusWaiting, l.Status)
}

func TestSetReadyUnready(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code
	_, err := s.Join(code, "bob")
	require.NoError(t, err)

	_, _, _ = s.SetReady(code, "alice", true)
	l, started, ok := s.SetReady(code, "alice", false)
	require.True(t, ok)
	assert.False(t, started)
	assert.False(t, l.Players[0].Ready)

	// bob readying alone does not start the game
	_, started, _ = s.SetReady(code, "bob", true)
	assert.False(t, started)
}

func TestSetReadyMissingLobbyOrMember(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	_, _, ok := s.SetReady("999999", "alice", true)
	assert.False(t, ok)

	_, _, ok = s.SetReady(code, "stranger", true)
	assert.False(t, ok)
}

func TestRecordJoinedGame(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code
	_, err := s.Join(code, "bob")
	require.NoError(t, err)

	l, allIn, ok := s.RecordJoinedGame(code, "alice", 100, 200)
	require.True(t, ok)
	assert.False(t, allIn)
	assert.True(t, l.Players[0].InGame)
	assert.Equal(t, 100.0, l.Players[0].X)
	assert.Equal(t, 200.0, l.Players[0].Y)

	_, allIn, ok = s.RecordJoinedGame(code, "bob", 300, 200)
	require.True(t, ok)
	assert.True(t, allIn)
}

func TestApplyMovement(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	assert.True(t, s.ApplyMovement(code, "alice", 10, 20, 1, -1, 100))

	l, _ := s.Get(code)
	p := l.Players[0]
	assert.Equal(t, int64(100), p.LastMoveTimestamp)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 1.0, p.VelocityX)
}

func TestApplyMovementStale(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	require.True(t, s.ApplyMovement(code, "alice", 10, 20, 1, -1, 100))

	// Equal and older timestamps are both rejected and leave state untouched.
	assert.False(t, s.ApplyMovement(code, "alice", 99, 99, 9, 9, 100))
	assert.False(t, s.ApplyMovement(code, "alice", 99, 99, 9, 9, 50))

	l, _ := s.Get(code)
	p := l.Players[0]
	assert.Equal(t, int64(100), p.LastMoveTimestamp)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 20.0, p.Y)
	assert.Equal(t, 1.0, p.VelocityX)
	assert.Equal(t, -1.0, p.VelocityY)
}

func TestApplyMovementUnknownTargets(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	assert.False(t, s.ApplyMovement("999999", "alice", 0, 0, 0, 0, 1))
	assert.False(t, s.ApplyMovement(code, "stranger", 0, 0, 0, 0, 1))
}

func TestRemoveMemberDeletesEmptyLobby(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	res := s.RemoveMember(code, "alice")
	assert.True(t, res.Found)
	assert.True(t, res.Deleted)

	_, ok := s.Get(code)
	assert.False(t, ok, "emptied lobby must not exist")
	assert.Empty(t, s.List())
}

func TestRemoveMemberPromotesHost(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code
	_, err := s.Join(code, "bob")
	require.NoError(t, err)

	res := s.RemoveMember(code, "alice")
	require.True(t, res.Found)
	assert.False(t, res.Deleted)
	assert.True(t, res.HostChanged)
	require.NotNil(t, res.Lobby)
	assert.Equal(t, "bob", res.Lobby.Host)
	require.Len(t, res.Lobby.Players, 1)
	assert.Equal(t, "bob", res.Lobby.Players[0].Username)
}

func TestRemoveMemberNonHost(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code
	_, err := s.Join(code, "bob")
	require.NoError(t, err)

	res := s.RemoveMember(code, "bob")
	require.True(t, res.Found)
	assert.False(t, res.HostChanged)
	assert.Equal(t, "alice", res.Lobby.Host)
}

func TestRemoveMemberMissing(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code

	assert.False(t, s.RemoveMember("999999", "alice").Found)
	assert.False(t, s.RemoveMember(code, "stranger").Found)
}

func TestList(t *testing.T) {
	s := newTestStore()
	code := s.Create("alice").Code
	_, err := s.Join(code, "bob")
	require.NoError(t, err)
	s.Create("carol")

	list := s.List()
	require.Len(t, list, 2)
	byCode := map[string]Summary{}
	for _, sum := range list {
		byCode[sum.Code] = sum
	}
	assert.Equal(t, 2, byCode[code].PlayerCount)
	assert.Equal(t, "alice", byCode[code].Host)
	assert.Equal(t, StatusWaiting, byCode[code].Status)
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore()
	l := s.Create("alice")

	// Mutating a returned snapshot must not leak into the store.
	l.Players[0].Ready = true
	l.Host = "mallory"

	fresh, ok := s.Get(l.Code)
	require.True(t, ok)
	assert.False(t, fresh.Players[0].Ready)
	assert.Equal(t, "alice", fresh.Host)
}
