package repository

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
)

// StoreSuite Store 行为测试套件，GORM 和原生SQL实现共用
//
// 使用方设置 NewStore，每个测试都拿到一个空的、已迁移的存储。
type StoreSuite struct {
	suite.Suite
	NewStore func() (Store, func())

	store   Store
	cleanup func()
}

func (s *StoreSuite) SetupTest() {
	s.store, s.cleanup = s.NewStore()
}

func (s *StoreSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *StoreSuite) TestCreateAndFindGame() {
	ctx := context.Background()
	playedAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	g := &models.Game{PlayerName: "ann", SecretWord: "planet", PlayedAt: playedAt}
	s.Require().NoError(s.store.CreateGame(ctx, g))
	s.NotZero(g.ID)
	s.Equal(models.ResultInProgress, g.Result)

	found, err := s.store.FindGame(ctx, g.ID)
	s.Require().NoError(err)
	s.Equal("ann", found.PlayerName)
	s.Equal("planet", found.SecretWord)
	s.Equal(models.ResultInProgress, found.Result)
	s.True(playedAt.Equal(found.PlayedAt), "playedAt=%s", found.PlayedAt)
}

func (s *StoreSuite) TestFindGameNotFound() {
	_, err := s.store.FindGame(context.Background(), 999)
	s.True(apperrors.Is(err, apperrors.ErrGameNotFound))
}

func (s *StoreSuite) TestListGamesNewestFirst() {
	ctx := context.Background()
	first := CreateTestGame(s.T(), s.store, "ann", "planet")
	second := CreateTestGame(s.T(), s.store, "bob", "rocket")
	third := CreateTestGame(s.T(), s.store, "cid", "socket")

	games, err := s.store.ListGames(ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal([]uint{third.ID, second.ID, first.ID}, []uint{games[0].ID, games[1].ID, games[2].ID})

	p := NewPagination(2, 2)
	page, err := s.store.ListGames(ctx, p)
	s.Require().NoError(err)
	s.Equal(int64(3), p.Total)
	s.Require().Len(page, 1)
	s.Equal(first.ID, page[0].ID)
}

func (s *StoreSuite) TestListGamesEmpty() {
	games, err := s.store.ListGames(context.Background(), nil)
	s.Require().NoError(err)
	s.NotNil(games)
	s.Empty(games)
}

func (s *StoreSuite) TestFinishGame() {
	ctx := context.Background()
	g := CreateTestGame(s.T(), s.store, "ann", "planet")

	s.Require().NoError(s.store.FinishGame(ctx, g.ID, models.ResultWin))
	found, err := s.store.FindGame(ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(models.ResultWin, found.Result)

	err = s.store.FinishGame(ctx, 999, models.ResultLose)
	s.True(apperrors.Is(err, apperrors.ErrGameNotFound))
}

func (s *StoreSuite) TestAttemptsOrderedByNumber() {
	ctx := context.Background()
	g := CreateTestGame(s.T(), s.store, "ann", "planet")

	for _, a := range []models.Attempt{
		{GameID: g.ID, AttemptNo: 3, Letter: "z", Success: false},
		{GameID: g.ID, AttemptNo: 1, Letter: "p", Success: true},
		{GameID: g.ID, AttemptNo: 2, Letter: "l", Success: true},
	} {
		a := a
		s.Require().NoError(s.store.AddAttempt(ctx, &a))
	}

	attempts, err := s.store.ListAttempts(ctx, g.ID)
	s.Require().NoError(err)
	s.Require().Len(attempts, 3)
	s.Equal([]string{"p", "l", "z"}, []string{attempts[0].Letter, attempts[1].Letter, attempts[2].Letter})
	s.Equal(1, attempts[0].AttemptNo)
	s.True(attempts[0].Success)
	s.False(attempts[2].Success)

	other := CreateTestGame(s.T(), s.store, "bob", "rocket")
	none, err := s.store.ListAttempts(ctx, other.ID)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *StoreSuite) TestAddAttemptUnknownGame() {
	err := s.store.AddAttempt(context.Background(), &models.Attempt{GameID: 42, AttemptNo: 1, Letter: "a"})
	s.True(apperrors.Is(err, apperrors.ErrGameNotFound))
}

func (s *StoreSuite) TestDeleteGameCascades() {
	ctx := context.Background()
	g := CreateTestGame(s.T(), s.store, "ann", "planet")
	CreateTestAttempts(s.T(), s.store, g, "p", "x")

	s.Require().NoError(s.store.DeleteGame(ctx, g.ID))

	_, err := s.store.FindGame(ctx, g.ID)
	s.True(apperrors.Is(err, apperrors.ErrGameNotFound))
	attempts, err := s.store.ListAttempts(ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(attempts)

	s.True(apperrors.Is(s.store.DeleteGame(ctx, g.ID), apperrors.ErrGameNotFound))
}

func (s *StoreSuite) TestWords() {
	ctx := context.Background()

	_, err := s.store.RandomWord(ctx)
	s.True(apperrors.Is(err, apperrors.ErrNoWords))

	added, err := s.store.AddWord(ctx, "  Planet ")
	s.Require().NoError(err)
	s.True(added)

	added, err = s.store.AddWord(ctx, "planet")
	s.Require().NoError(err)
	s.False(added, "重复单词忽略")

	_, err = s.store.AddWord(ctx, "abc")
	s.True(apperrors.Is(err, apperrors.ErrInvalidWord))
	_, err = s.store.AddWord(ctx, "r0cket")
	s.True(apperrors.Is(err, apperrors.ErrInvalidWord))

	s.Require().NoError(addWords(ctx, s.store, "rocket", "socket"))

	count, err := s.store.CountWords(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	words, err := s.store.ListWords(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"planet", "rocket", "socket"}, []string{words[0].Word, words[1].Word, words[2].Word})

	w, err := s.store.RandomWord(ctx)
	s.Require().NoError(err)
	s.Contains([]string{"planet", "rocket", "socket"}, w)
	s.True(game.IsValidWord(w))
}

func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping(context.Background()))
}

func addWords(ctx context.Context, store Store, words ...string) error {
	for _, w := range words {
		if _, err := store.AddWord(ctx, w); err != nil {
			return err
		}
	}
	return nil
}
