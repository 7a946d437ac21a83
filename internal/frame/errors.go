package frame

import (
	"errors"
	"fmt"
)

var (
	ErrRejectedByUser        = errors.New("rejected by user")
	ErrInvalidDomainManifest = errors.New("invalid domain manifest")
	ErrAlreadyMounted        = errors.New("frame already mounted")
)

// AddFrameOutcome classifies an add-frame failure.
type AddFrameOutcome int

const (
	AddFrameUnknown AddFrameOutcome = iota
	AddFrameRejected
	AddFrameInvalidManifest
)

func (o AddFrameOutcome) String() string {
	switch o {
	case AddFrameRejected:
		return "rejected_by_user"
	case AddFrameInvalidManifest:
		return "invalid_domain_manifest"
	default:
		return "unknown"
	}
}

func ClassifyAddFrameError(err error) AddFrameOutcome {
	switch {
	case errors.Is(err, ErrRejectedByUser):
		return AddFrameRejected
	case errors.Is(err, ErrInvalidDomainManifest):
		return AddFrameInvalidManifest
	default:
		return AddFrameUnknown
	}
}

// AddFrameStatus is the user-facing line shown after a failed add-frame.
func AddFrameStatus(err error) string {
	if err == nil {
		return ""
	}
	switch ClassifyAddFrameError(err) {
	case AddFrameRejected, AddFrameInvalidManifest:
		return fmt.Sprintf("Not added: %s", err.Error())
	default:
		return fmt.Sprintf("Error: %s", err.Error())
	}
}
