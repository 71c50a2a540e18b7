package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInterest(t *testing.T) {
	tests := []struct {
		tag    string
		want   Interest
		wantOK bool
	}{
		{"band", InterestBand, true},
		{"choir", InterestChoir, true},
		{"summerMusical", InterestSummerMusical, true},
		{"Band", "", false},
		{"summermusical", "", false},
		{"", "", false},
		{"not-a-tag", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := ParseInterest(tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubscriberInterests(t *testing.T) {
	var s Subscriber
	assert.False(t, s.AnyInterest())

	s.SetInterest(InterestChoir)
	s.SetInterest(Interest("kazoo"))

	assert.True(t, s.AnyInterest())
	assert.True(t, s.HasInterest(InterestChoir))
	assert.False(t, s.HasInterest(InterestBand))
	assert.False(t, s.HasInterest(InterestSummerMusical))
	assert.False(t, s.HasInterest(Interest("kazoo")))
}
