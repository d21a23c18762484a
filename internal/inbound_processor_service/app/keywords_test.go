package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCommand(t *testing.T) {
	testCases := []struct {
		body string
		want Command
	}{
		{"ACCEPT, I'm on it", CommandAccept},
		{"i accept", CommandAccept},
		{"אני מקבל את העבודה", CommandAccept},
		{"מסכים", CommandAccept},
		{"complete", CommandComplete},
		{"Job COMPLETED", CommandComplete},
		{"העבודה הסתיימה", CommandComplete},
		{"סיימתי", CommandComplete},
		{"accept and complete", CommandAccept},
		{"hello there", CommandNone},
		{"", CommandNone},
	}
	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchCommand(tc.body))
		})
	}
}
