package services

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"vampyr-backend/models"
)

type LinkServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *LinkService
}

func TestLinkServiceSuite(t *testing.T) {
	suite.Run(t, new(LinkServiceSuite))
}

func (s *LinkServiceSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewLinkService(s.db)
}

func (s *LinkServiceSuite) createPlayer(nickname string) *models.Player {
	player := models.Player{Nickname: nickname, Level: 1}
	s.Require().NoError(s.db.Create(&player).Error)
	return &player
}

// expireCode rewrites a code's expiry into the past, standing in for the
// 5-minute wait.
func (s *LinkServiceSuite) expireCode(code string) {
	s.Require().NoError(s.db.Model(&models.LinkCode{}).
		Where("code = ?", code).
		Update("expires_at", time.Now().Add(-time.Second)).Error)
}

func (s *LinkServiceSuite) pendingCount(playerID uint) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.LinkCode{}).
		Where("player_id = ? AND consumed = ?", playerID, false).
		Count(&count).Error)
	return count
}

// Issue

func (s *LinkServiceSuite) TestIssueFailsForUnknownPlayer() {
	_, err := s.service.IssueCode("nobody")
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *LinkServiceSuite) TestIssueCodeFormatAndTTL() {
	s.createPlayer("rex")

	before := time.Now()
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	s.Regexp(regexp.MustCompile(`^[0-9A-F]{8}$`), code.Code)
	s.False(code.Consumed)
	s.Empty(code.ConsumedReason)

	remaining := code.ExpiresAt.Sub(before)
	s.Greater(remaining, LinkCodeTTL-time.Minute)
	s.LessOrEqual(remaining, LinkCodeTTL+time.Minute)
}

func (s *LinkServiceSuite) TestIssueSupersedesPendingCode() {
	player := s.createPlayer("rex")

	first, err := s.service.IssueCode("rex")
	s.Require().NoError(err)
	second, err := s.service.IssueCode("rex")
	s.Require().NoError(err)
	s.NotEqual(first.Code, second.Code)

	var superseded models.LinkCode
	s.Require().NoError(s.db.Where("code = ?", first.Code).First(&superseded).Error)
	s.True(superseded.Consumed)
	s.Equal(models.ConsumedReasonSuperseded, superseded.ConsumedReason)

	s.EqualValues(1, s.pendingCount(player.ID))
}

func (s *LinkServiceSuite) TestConcurrentIssueLeavesOnePending() {
	player := s.createPlayer("rex")

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.service.IssueCode("rex")
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.EqualValues(1, s.pendingCount(player.ID))

	var total int64
	s.Require().NoError(s.db.Model(&models.LinkCode{}).
		Where("player_id = ?", player.ID).
		Count(&total).Error)
	s.EqualValues(n, total)
}

func (s *LinkServiceSuite) TestIssueKeepsConsumedCodesIntact() {
	s.createPlayer("rex")

	first, err := s.service.IssueCode("rex")
	s.Require().NoError(err)
	_, err = s.service.ResolveCode(first.Code, "u1")
	s.Require().NoError(err)

	_, err = s.service.IssueCode("rex")
	s.Require().NoError(err)

	// The genuinely used code must not be relabeled by supersession.
	var used models.LinkCode
	s.Require().NoError(s.db.Where("code = ?", first.Code).First(&used).Error)
	s.Equal(models.ConsumedReasonUsed, used.ConsumedReason)
}

// Resolve

func (s *LinkServiceSuite) TestResolveLinksPlayer() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	player, err := s.service.ResolveCode(code.Code, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(player.UserID)
	s.Equal("u1", *player.UserID)

	var lc models.LinkCode
	s.Require().NoError(s.db.Where("code = ?", code.Code).First(&lc).Error)
	s.True(lc.Consumed)
	s.Equal(models.ConsumedReasonUsed, lc.ConsumedReason)
}

func (s *LinkServiceSuite) TestResolveUnknownCode() {
	_, err := s.service.ResolveCode("DEADBEEF", "u1")
	s.ErrorIs(err, ErrCodeInvalidOrExpired)
}

func (s *LinkServiceSuite) TestResolveExpiredCode() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	s.expireCode(code.Code)

	_, err = s.service.ResolveCode(code.Code, "u1")
	s.ErrorIs(err, ErrCodeInvalidOrExpired)

	// The failed attempt must not have linked anyone.
	var player models.Player
	s.Require().NoError(s.db.Where("nickname = ?", "rex").First(&player).Error)
	s.Nil(player.UserID)
}

func (s *LinkServiceSuite) TestExpiryDominatesReplayEligibility() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	_, err = s.service.ResolveCode(code.Code, "u1")
	s.Require().NoError(err)
	_, err = s.service.Unlink("u1")
	s.Require().NoError(err)

	// Replayable by state, but past its TTL: expiry wins.
	s.expireCode(code.Code)
	_, err = s.service.ResolveCode(code.Code, "u2")
	s.ErrorIs(err, ErrCodeInvalidOrExpired)
}

func (s *LinkServiceSuite) TestResolveConsumedCodeBySecondUser() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	player, err := s.service.ResolveCode(code.Code, "u1")
	s.Require().NoError(err)
	s.Equal("u1", *player.UserID)

	_, err = s.service.ResolveCode(code.Code, "u2")
	s.ErrorIs(err, ErrCodeAlreadyUsed)
}

func (s *LinkServiceSuite) TestResolveTwiceBySameUserFails() {
	// Deliberate: consumed + owner non-null means AlreadyUsed even for the
	// owner. Resolve is not idempotent.
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	_, err = s.service.ResolveCode(code.Code, "u1")
	s.Require().NoError(err)

	_, err = s.service.ResolveCode(code.Code, "u1")
	s.ErrorIs(err, ErrCodeAlreadyUsed)
}

func (s *LinkServiceSuite) TestResolveForPlayerLinkedToOther() {
	s.createPlayer("rex")
	first, err := s.service.IssueCode("rex")
	s.Require().NoError(err)
	_, err = s.service.ResolveCode(first.Code, "u1")
	s.Require().NoError(err)

	// Fresh code for an already-linked player: only the owner may resolve it.
	second, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	_, err = s.service.ResolveCode(second.Code, "u2")
	s.ErrorIs(err, ErrPlayerAlreadyLinked)

	player, err := s.service.ResolveCode(second.Code, "u1")
	s.Require().NoError(err)
	s.Equal("u1", *player.UserID)
}

func (s *LinkServiceSuite) TestReplayAfterUnlink() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	_, err = s.service.ResolveCode(code.Code, "u1")
	s.Require().NoError(err)

	unlinked, err := s.service.Unlink("u1")
	s.Require().NoError(err)
	s.Nil(unlinked.UserID)

	// The used code becomes replayable once its player is unlinked — by
	// anyone, not just the previous owner.
	player, err := s.service.ResolveCode(code.Code, "u2")
	s.Require().NoError(err)
	s.Equal("u2", *player.UserID)

	// Linked again: the same code is spent for good.
	_, err = s.service.ResolveCode(code.Code, "u3")
	s.ErrorIs(err, ErrCodeAlreadyUsed)
}

func (s *LinkServiceSuite) TestSupersededCodeNeverReplayable() {
	s.createPlayer("rex")

	first, err := s.service.IssueCode("rex")
	s.Require().NoError(err)
	second, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	// Player is unlinked, but the superseded code was never used — only a
	// genuine unlink grants replay eligibility, and there is nothing to
	// replay here.
	_, err = s.service.ResolveCode(first.Code, "u1")
	s.ErrorIs(err, ErrCodeAlreadyUsed)

	player, err := s.service.ResolveCode(second.Code, "u1")
	s.Require().NoError(err)
	s.Equal("u1", *player.UserID)
}

func (s *LinkServiceSuite) TestConcurrentResolveSingleWinner() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	userIDs := []string{"u1", "u2", "u3", "u4"}
	results := make([]error, len(userIDs))

	var wg sync.WaitGroup
	wg.Add(len(userIDs))
	for i, userID := range userIDs {
		i, userID := i, userID
		go func() {
			defer wg.Done()
			_, results[i] = s.service.ResolveCode(code.Code, userID)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		}
	}
	s.Equal(1, winners, "exactly one user may claim a code")

	var player models.Player
	s.Require().NoError(s.db.Where("nickname = ?", "rex").First(&player).Error)
	s.NotNil(player.UserID)
}

func (s *LinkServiceSuite) TestStoreFailureIsRetryable() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)

	// Knock the table out from under the service to stand in for an outage.
	s.Require().NoError(s.db.Exec("DROP TABLE link_codes").Error)

	_, err = s.service.IssueCode("rex")
	s.ErrorIs(err, ErrStoreUnavailable)

	_, err = s.service.ResolveCode(code.Code, "u1")
	s.ErrorIs(err, ErrStoreUnavailable)
}

// Unlink

func (s *LinkServiceSuite) TestUnlinkWithoutPlayer() {
	_, err := s.service.Unlink("u1")
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *LinkServiceSuite) TestLinkedPlayer() {
	s.createPlayer("rex")
	code, err := s.service.IssueCode("rex")
	s.Require().NoError(err)
	_, err = s.service.ResolveCode(code.Code, "u1")
	s.Require().NoError(err)

	player, err := s.service.LinkedPlayer("u1")
	s.Require().NoError(err)
	s.Equal("rex", player.Nickname)

	_, err = s.service.LinkedPlayer("u2")
	s.ErrorIs(err, ErrPlayerNotFound)
}
