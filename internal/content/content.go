// internal/content/content.go
package content

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSendDelay is the minimum gap between two send starts on the
// same account.
const DefaultSendDelay = 4500 * time.Millisecond

var DefaultSubjects = []string{
	"Notice", "Confirmation", "Alert Release", "New Update Purchase",
	"New Update Confirmation", "Thank you for contribution",
	"Thanks for your interest", "Maintenance Invoice",
	"Purchase Notification", "Maintenance Confirmation",
	"Purchase Confirmation", "Purchase Invoice", "Immediately notify",
	"Alert", "Update", "Hello", "Thank You", "Thanks", "Thanks Again",
	"Notify", "Notification", "Alert Update", "Renewal", "Subscription",
	"Activation", "Purchase Report", "Purchase Receipt", "New Receipt",
	"Modification in Receipt", "Modification in Invoice",
	"Thanks for your order", "Thanks for your Purchase",
	"Thanks for your confirmation of renewal", "Thanks for transaction",
	"New transaction found", "Renewal Transaction Update",
	"Transaction Notification", "Transaction success Alert",
	"Transaction Activation Update", "Transaction Subscription Notify",
}

var DefaultBodies = []string{
	"Hello, Please find the attached documents for your review. We appreciate your prompt attention to this matter. Thank you.",
	"Greetings, The files you requested are attached. Please let us know if you have any questions. Best regards.",
	"Dear User, Attached is the information pertaining to your account. Please review it at your earliest convenience. Sincerely.",
}

// Pool is the subject/body source for one run. Read once at run start.
type Pool struct {
	Subjects []string `yaml:"subjects" json:"subjects"`
	Bodies   []string `yaml:"bodies" json:"bodies"`
}

// DefaultPool returns the built-in subject and body pools.
func DefaultPool() Pool {
	return Pool{Subjects: DefaultSubjects, Bodies: DefaultBodies}
}

// LoadPool reads a pool from a YAML file. Missing sections fall back to
// the defaults.
func LoadPool(path string) (Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pool{}, fmt.Errorf("read content pool: %w", err)
	}
	var p Pool
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pool{}, fmt.Errorf("parse content pool %s: %w", path, err)
	}
	if len(p.Subjects) == 0 {
		p.Subjects = DefaultSubjects
	}
	if len(p.Bodies) == 0 {
		p.Bodies = DefaultBodies
	}
	return p, nil
}

// PickSubject returns a random subject from the pool.
func (p Pool) PickSubject(r *rand.Rand) string {
	if len(p.Subjects) == 0 {
		return DefaultSubjects[r.Intn(len(DefaultSubjects))]
	}
	return p.Subjects[r.Intn(len(p.Subjects))]
}

// PickBody returns a random body from the pool.
func (p Pool) PickBody(r *rand.Rand) string {
	if len(p.Bodies) == 0 {
		return DefaultBodies[r.Intn(len(DefaultBodies))]
	}
	return p.Bodies[r.Intn(len(p.Bodies))]
}

// Render replaces {placeholder} tokens in a template with values.
func Render(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		if v == "" {
			v = "<unknown>"
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
