package ledger

import "time"

func nowUTC() time.Time { return time.Now().UTC() }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
