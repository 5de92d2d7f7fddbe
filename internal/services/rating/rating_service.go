package rating

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/auth"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

// RatingService принимает оценки и пересчитывает репутацию
type RatingService struct {
	repo       db.Repository
	dispatcher *outbox.Dispatcher
}

// NewRatingService создает новый экземпляр RatingService
func NewRatingService(repo db.Repository, dispatcher *outbox.Dispatcher) *RatingService {
	return &RatingService{repo: repo, dispatcher: dispatcher}
}

// Input - тело запроса оценки
type Input struct {
	UserID  *int64   `json:"userId"`
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Comment *string  `json:"comment"`
	Aspects []string `json:"aspects"`
}

// Entry - оценка, которую нужно записать
type Entry struct {
	RaterID int64
	Score   int
	Comment *string
	Aspects []string
}

// RateExchange сохраняет оценку участника завершенного обмена
func (s *RatingService) RateExchange(ctx context.Context, user *models.User, exchangeID int64, in Input) (*models.Rating, error) {
	if in.UserID != nil && *in.UserID != user.ID {
		return nil, apperr.Forbidden("No puedes calificar en nombre de otro usuario")
	}

	var rating *models.Rating
	var cmds []outbox.Command
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		e, err := repo.LockExchange(ctx, exchangeID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return apperr.NotFound("Intercambio no encontrado")
			}
			return apperr.Internal("error al obtener intercambio", err)
		}
		if err := auth.RequireParticipant(user, e); err != nil {
			return err
		}
		if e.Status != models.ExchangeCompleted {
			return apperr.InvalidInput("Solo se pueden calificar intercambios completados")
		}

		rating, cmds, err = Record(ctx, repo, e, Entry{
			RaterID: user.ID,
			Score:   in.Rating,
			Comment: in.Comment,
			Aspects: in.Aspects,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(cmds)
	return rating, nil
}

// Record записывает оценку внутри транзакции, пересчитывает среднее и insignias получателя
func Record(ctx context.Context, repo db.Repository, e *models.Exchange, in Entry) (*models.Rating, []outbox.Command, error) {
	if in.Score < models.MinScore || in.Score > models.MaxScore {
		return nil, nil, apperr.InvalidInput("La calificación debe estar entre 1 y 5")
	}

	r := &models.Rating{
		ExchangeID: e.ID,
		RaterID:    in.RaterID,
		RateeID:    e.Counterparty(in.RaterID),
		Score:      in.Score,
		Comment:    in.Comment,
		Aspects:    in.Aspects,
		Recommends: in.Score >= 4,
		Public:     true,
	}

	// Блокировка получателя сериализует пересчет среднего между обменами
	if _, err := repo.LockUser(ctx, r.RateeID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, apperr.NotFound("Usuario no encontrado")
		}
		return nil, nil, apperr.Internal("error al bloquear usuario", err)
	}
	if err := repo.InsertRating(ctx, r); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, nil, apperr.InvalidInput("ya has calificado este intercambio")
		}
		return nil, nil, apperr.Internal("error al guardar calificación", err)
	}

	if _, err := RecomputeAverage(ctx, repo, r.RateeID); err != nil {
		return nil, nil, apperr.Internal("error al actualizar promedio", err)
	}

	raterName := "Un usuario"
	if rater, err := repo.GetUser(ctx, r.RaterID); err == nil {
		raterName = rater.DisplayName()
	}

	cmds := []outbox.Command{
		outbox.Notify(r.RateeID, models.NotifNewRating, "Nueva calificación",
			fmt.Sprintf("%s te ha calificado con %d estrellas", raterName, r.Score),
			map[string]any{
				"intercambio_id":  e.ID,
				"calificacion_id": r.ID,
				"calificador_id":  r.RaterID,
				"puntuacion":      r.Score,
			}),
	}

	badgeCmds, err := EvaluateBadges(ctx, repo, r.RateeID)
	if err != nil {
		return nil, nil, err
	}
	return r, append(cmds, badgeCmds...), nil
}

// RecomputeAverage пересчитывает средний рейтинг по всей истории оценок
func RecomputeAverage(ctx context.Context, repo db.Repository, userID int64) (float64, error) {
	scores, err := repo.ListRatingScores(ctx, userID)
	if err != nil {
		return 0, err
	}
	avg, _ := Average(scores).Float64()
	if err := repo.SetUserRating(ctx, userID, avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// EvaluateBadges выдает insignias по свежим агрегатам пользователя
func EvaluateBadges(ctx context.Context, repo db.Repository, userID int64) ([]outbox.Command, error) {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("error al obtener usuario", err)
	}
	scores, err := repo.ListRatingScores(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("error al obtener calificaciones", err)
	}
	resolved, err := repo.CountResolvedReportsAgainst(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("error al obtener reportes", err)
	}

	names := EligibleBadges(Stats{
		Average:            Average(scores),
		RatingCount:        len(scores),
		Verified:           user.Verified,
		ResolvedReports:    resolved,
		CompletedExchanges: user.TotalExchanges,
	})

	var cmds []outbox.Command
	for _, name := range names {
		badge, err := repo.GetBadgeByName(ctx, name)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				log.Printf("⚠️ Insignia %q отсутствует в каталоге", name)
				continue
			}
			return nil, apperr.Internal("error al obtener insignia", err)
		}

		granted, err := repo.GrantBadge(ctx, userID, badge.ID)
		if err != nil {
			return nil, apperr.Internal("error al otorgar insignia", err)
		}
		if !granted {
			continue
		}

		log.Printf("🏅 Пользователь %d получил insignia %q", userID, name)
		cmds = append(cmds, outbox.Notify(userID, models.NotifBadgeEarned, "¡Nueva insignia!",
			fmt.Sprintf("Has obtenido la insignia \"%s\"", name),
			map[string]any{"insignia_id": badge.ID, "nombre": name}))
	}
	return cmds, nil
}
