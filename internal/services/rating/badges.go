package rating

import (
	"github.com/shopspring/decimal"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

// Пороги автоматических insignias
const (
	fiveStarsMinRatings      = 10
	trustedMinExchanges      = 5
	trustedMaxResolvedClaims = 0
)

// Stats - агрегаты пользователя, по которым выдаются insignias
type Stats struct {
	Average            decimal.Decimal
	RatingCount        int
	Verified           bool
	ResolvedReports    int
	CompletedExchanges int
}

// Average - среднее арифметическое по всем оценкам, округленное до 2 знаков
func Average(scores []int) decimal.Decimal {
	if len(scores) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromInt(int64(s)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(scores)))).Round(2)
}

// EligibleBadges возвращает названия insignias, условия которых выполнены
func EligibleBadges(st Stats) []string {
	var names []string
	if st.Average.Equal(decimal.NewFromInt(models.MaxScore)) && st.RatingCount >= fiveStarsMinRatings {
		names = append(names, models.BadgeFiveStars)
	}
	if st.Verified && st.ResolvedReports <= trustedMaxResolvedClaims && st.CompletedExchanges >= trustedMinExchanges {
		names = append(names, models.BadgeTrusted)
	}
	return names
}
