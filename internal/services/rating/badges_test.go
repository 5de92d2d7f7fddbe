package rating

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

func TestAverage(t *testing.T) {
	assert.True(t, Average(nil).IsZero())
	assert.Equal(t, "5", Average([]int{5, 5, 5}).String())
	assert.Equal(t, "4.33", Average([]int{5, 4, 4}).String())
	assert.Equal(t, "3.67", Average([]int{5, 5, 1}).String())
}

func TestEligibleBadges(t *testing.T) {
	five := decimal.NewFromInt(5)

	assert.Empty(t, EligibleBadges(Stats{Average: five, RatingCount: 9}))
	assert.Equal(t, []string{models.BadgeFiveStars}, EligibleBadges(Stats{Average: five, RatingCount: 10}))
	assert.Empty(t, EligibleBadges(Stats{Average: decimal.RequireFromString("4.99"), RatingCount: 50}))

	trusted := Stats{Verified: true, CompletedExchanges: 5}
	assert.Equal(t, []string{models.BadgeTrusted}, EligibleBadges(trusted))

	trusted.ResolvedReports = 1
	assert.Empty(t, EligibleBadges(trusted))

	assert.Empty(t, EligibleBadges(Stats{Verified: false, CompletedExchanges: 20}))
	assert.Empty(t, EligibleBadges(Stats{Verified: true, CompletedExchanges: 4}))

	assert.Equal(t, []string{models.BadgeFiveStars, models.BadgeTrusted},
		EligibleBadges(Stats{Average: five, RatingCount: 12, Verified: true, CompletedExchanges: 7}))
}
