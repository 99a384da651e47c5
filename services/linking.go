// services/linking.go
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"vampyr-backend/models"

	"gorm.io/gorm"
)

// LinkCodeTTL is how long an issued code stays resolvable. Clients rendering
// the code must advertise the same window.
const LinkCodeTTL = 5 * time.Minute

// Link flow errors, mapped to HTTP statuses by the handlers. Only
// ErrStoreUnavailable is worth retrying; the rest are terminal for the call.
var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrCodeInvalidOrExpired = errors.New("link code invalid or expired")
	ErrCodeAlreadyUsed      = errors.New("link code already used")
	ErrPlayerAlreadyLinked  = errors.New("player already linked to another account")
	ErrStoreUnavailable     = errors.New("link store unavailable")
)

// storeErr wraps database failures in ErrStoreUnavailable while letting the
// taxonomy errors above pass through untouched.
func storeErr(err error) error {
	switch {
	case errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrCodeInvalidOrExpired),
		errors.Is(err, ErrCodeAlreadyUsed),
		errors.Is(err, ErrPlayerAlreadyLinked):
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

type LinkService struct {
	DB *gorm.DB
}

func NewLinkService(db *gorm.DB) *LinkService {
	return &LinkService{DB: db}
}

// newLinkCode draws 4 bytes from crypto/rand and renders them as 8 uppercase
// hex chars — short enough to type from a screen, 32 bits of entropy against
// guessing within the TTL.
func newLinkCode() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate link code: %w", err)
	}
	return fmt.Sprintf("%X", buf[:]), nil
}

// IssueCode creates a fresh link code for the named player, superseding any
// still-pending code so that at most one code per player is ever active.
// Calling it again is the intended "regenerate" gesture.
func (s *LinkService) IssueCode(nickname string) (*models.LinkCode, error) {
	code, err := newLinkCode()
	if err != nil {
		return nil, err
	}

	var created models.LinkCode
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := tx.Where("nickname = ?", nickname).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		// Touching the player row takes its write lock for the rest of the
		// transaction, serializing concurrent issuance for the same player.
		if err := tx.Model(&player).UpdateColumn("updated_at", time.Now()).Error; err != nil {
			return err
		}

		// Supersede every unconsumed code for this player, whatever its age.
		// Superseded codes stay in the table but can never be replayed.
		if err := tx.Model(&models.LinkCode{}).
			Where("player_id = ? AND consumed = ?", player.ID, false).
			Updates(map[string]interface{}{
				"consumed":        true,
				"consumed_reason": models.ConsumedReasonSuperseded,
			}).Error; err != nil {
			return err
		}

		now := time.Now()
		created = models.LinkCode{
			Code:      code,
			PlayerID:  player.ID,
			Consumed:  false,
			CreatedAt: now,
			ExpiresAt: now.Add(LinkCodeTTL),
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &created, nil
}

// ResolveCode validates and spends a link code on behalf of an authenticated
// user, binding the code's player to that user.
//
// A consumed code is normally rejected, with one deliberate exception: a code
// that was genuinely used (not superseded) may be replayed while its player is
// unlinked and the code unexpired, so an unlink doesn't force re-issuance.
// The exception is asymmetric on purpose — once the player is linked again the
// same code always fails, even for the owning user.
func (s *LinkService) ResolveCode(code, userID string) (*models.Player, error) {
	var player models.Player
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var lc models.LinkCode
		if err := tx.Where("code = ?", code).First(&lc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCodeInvalidOrExpired
			}
			return err
		}

		// Expiry dominates every other state.
		if lc.Expired(time.Now()) {
			return ErrCodeInvalidOrExpired
		}

		if err := tx.Where("id = ?", lc.PlayerID).First(&player).Error; err != nil {
			return err
		}

		if lc.Consumed {
			if lc.ConsumedReason == models.ConsumedReasonSuperseded {
				return ErrCodeAlreadyUsed
			}
			if player.IsLinked() {
				return ErrCodeAlreadyUsed
			}
			// Used, but the player was unlinked afterwards: replayable.
		}

		if player.IsLinked() && *player.UserID != userID {
			return ErrPlayerAlreadyLinked
		}

		// Conditional claim of the player row. If a concurrent resolve won the
		// race since our read, the WHERE clause no longer matches and zero rows
		// change — a given code never hands success to two different users.
		claim := tx.Model(&models.Player{}).
			Where("id = ? AND (user_id IS NULL OR user_id = ?)", player.ID, userID).
			Update("user_id", userID)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrPlayerAlreadyLinked
		}

		if err := tx.Model(&lc).Updates(map[string]interface{}{
			"consumed":        true,
			"consumed_reason": models.ConsumedReasonUsed,
		}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", player.ID).First(&player).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &player, nil
}

// Unlink clears the player binding for the given user. The used code that
// established the binding becomes replayable again until it expires.
func (s *LinkService) Unlink(userID string) (*models.Player, error) {
	var player models.Player
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		if err := tx.Model(&player).Update("user_id", nil).Error; err != nil {
			return err
		}
		player.UserID = nil
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &player, nil
}

// LinkedPlayer returns the player currently owned by the given user.
func (s *LinkService) LinkedPlayer(userID string) (*models.Player, error) {
	var player models.Player
	if err := s.DB.Where("user_id = ?", userID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, storeErr(err)
	}
	return &player, nil
}
