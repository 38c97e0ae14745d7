// internal/engine/config.go
package engine

import (
	"time"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/content"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/planner"
)

// Config is the per-run dispatch configuration, read once at run start.
type Config struct {
	// Mode picks distribute vs broadcast assignment.
	Mode planner.Mode `json:"mode"`
	// PerAccountCap truncates each account's share in distribute mode.
	// <= 0 means uncapped.
	PerAccountCap int `json:"per_account_cap"`
	// SendDelay is the minimum gap between two send starts on one
	// account. Zero disables pacing.
	SendDelay time.Duration `json:"send_delay"`
	// Pool supplies subjects and bodies.
	Pool content.Pool `json:"pool"`
	// SenderNameType picks the generated display-name style.
	SenderNameType content.NameType `json:"sender_name_type"`
	// ResendMax bounds classifier-driven resends of one recipient on
	// top of the connection manager's own reopen budget.
	ResendMax int `json:"resend_max"`
	// Timeout, when positive, cancels the whole run after the deadline.
	Timeout time.Duration `json:"timeout"`
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = planner.ModeDistribute
	}
	if len(c.Pool.Subjects) == 0 && len(c.Pool.Bodies) == 0 {
		c.Pool = content.DefaultPool()
	}
	if c.SenderNameType == "" {
		c.SenderNameType = content.NameTypeBusiness
	}
	if c.ResendMax <= 0 {
		c.ResendMax = 2
	}
	if c.SendDelay < 0 {
		c.SendDelay = 0
	}
}
