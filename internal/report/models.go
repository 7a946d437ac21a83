package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidReport = errors.New("invalid report")

// Report is a user flagging one of their listed unfollowers. What happens
// to it is up to the moderation side.
type Report struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	ReporterFID int64     `json:"reporter_fid"`
	TargetFID   int64     `json:"target_fid"`
	CreatedAt   time.Time `json:"created_at"`
}

func New(sessionID string, reporterFID, targetFID int64) Report {
	return Report{
		ID:          uuid.New(),
		SessionID:   sessionID,
		ReporterFID: reporterFID,
		TargetFID:   targetFID,
		CreatedAt:   time.Now().UTC(),
	}
}

func (r Report) Validate() error {
	if r.TargetFID <= 0 {
		return errors.Join(ErrInvalidReport, errors.New("target fid must be positive"))
	}
	if r.ReporterFID < 0 {
		return errors.Join(ErrInvalidReport, errors.New("reporter fid must not be negative"))
	}
	return nil
}
