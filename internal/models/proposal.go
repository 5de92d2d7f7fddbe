package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Типы предложений в чате
const (
	ProposalPrice      = "precio"
	ProposalExchange   = "intercambio"
	ProposalMeeting    = "encuentro"
	ProposalConditions = "condiciones"
	ProposalOther      = "otro"
	ProposalDonation   = "donacion"
)

// Статусы предложения
const (
	ProposalPending           = "pendiente"
	ProposalAccepted          = "aceptada"
	ProposalRejected          = "rechazada"
	ProposalCountered         = "contrapropuesta"
	ProposalCancelled         = "cancelada"
	ProposalPendingValidation = "pendiente_validacion"
)

var proposalStatuses = map[string]bool{
	ProposalPending:           true,
	ProposalAccepted:          true,
	ProposalRejected:          true,
	ProposalCountered:         true,
	ProposalCancelled:         true,
	ProposalPendingValidation: true,
}

// IsProposalStatus проверяет статус предложения
func IsProposalStatus(s string) bool {
	return proposalStatuses[s]
}

// Proposal представляет предложение внутри чата (propuesta)
type Proposal struct {
	ID           int64            `json:"propuesta_id"`
	ChatID       int64            `json:"chat_id"`
	ProposerID   int64            `json:"propuesta_por_id"`
	AddresseeID  int64            `json:"propuesta_para_id"`
	Type         string           `json:"tipo_propuesta"`
	Description  string           `json:"descripcion"`
	Price        *decimal.Decimal `json:"precio_propuesto,omitempty"`
	Conditions   *string          `json:"condiciones,omitempty"`
	Status       string           `json:"estado"`
	Response     *string          `json:"respuesta,omitempty"`
	MeetingDate  *time.Time       `json:"fecha_encuentro,omitempty"`
	MeetingPlace *string          `json:"lugar_encuentro,omitempty"`
	ParentID     *int64           `json:"propuesta_padre_id,omitempty"`
	CreatedAt    time.Time        `json:"fecha_creacion"`
	RespondedAt  *time.Time       `json:"fecha_respuesta,omitempty"`
}
