// internal/domain/participation/entity.go
package participation

import (
	"time"

	"bnb-client/internal/domain/shared"
)

const StatusCompleted = "completed"

// Participation is one bounty a student registered for.
type Participation struct {
	ParticipationID shared.ID `json:"participation_id"`
	BountyID        shared.ID `json:"bounty_id,omitempty"`
	BountyName      string    `json:"bounty_name"`
	Status          string    `json:"status"`
	PointsEarned    int64     `json:"points_earned"`
	BerriesEarned   int64     `json:"berries_earned,omitempty"`
	CreatedOn       string    `json:"created_on,omitempty"`
	UpdatedOn       string    `json:"updated_on,omitempty"`
}

// MyParticipationsResponse is GET /api/bounty-participation/my.
type MyParticipationsResponse struct {
	Participations []Participation `json:"participations"`
}

func (r *MyParticipationsResponse) Items() []Participation {
	if r == nil || r.Participations == nil {
		return []Participation{}
	}
	return r.Participations
}

// Participant is a row of GET /api/bounty-participation/bounty/:id.
type Participant struct {
	UserID          shared.ID `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Status          string    `json:"status"`
	ParticipationID shared.ID `json:"participation_id,omitempty"`
}

// Record is the generic /api/participation resource.
type Record struct {
	ID       shared.ID `json:"id"`
	UserID   shared.ID `json:"user_id"`
	BountyID shared.ID `json:"bounty_id"`
	Status   string    `json:"status"`
	Points   int64     `json:"points,omitempty"`
}

// Request creates or updates a /api/participation record.
type Request struct {
	UserID   string `json:"user_id,omitempty"`
	BountyID string `json:"bounty_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Points   *int64 `json:"points,omitempty"`
}

// Transaction types in the history view.
const (
	TxEarned     = "earned"
	TxRegistered = "registered"
)

// Transaction is the history screen's view of a participation.
type Transaction struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Points      int64  `json:"points"`
	Category    string `json:"category"`
}

// ToTransaction maps a participation: completed ones are earnings, the
// rest registrations; the date falls back from updated to created to now.
func (p *Participation) ToTransaction(now time.Time) Transaction {
	date := p.UpdatedOn
	if date == "" {
		date = p.CreatedOn
	}
	if date == "" {
		date = now.UTC().Format(time.RFC3339)
	}
	txType := TxRegistered
	if p.Status == StatusCompleted {
		txType = TxEarned
	}
	return Transaction{
		ID:          p.ParticipationID.String(),
		Description: p.BountyName,
		Date:        date,
		Type:        txType,
		Points:      p.PointsEarned,
		Category:    p.Status,
	}
}

// History maps participations to transactions, keeping those whose type
// matches filter ("" or "all" keeps everything).
func History(items []Participation, filter string, now time.Time) []Transaction {
	out := make([]Transaction, 0, len(items))
	for i := range items {
		tx := items[i].ToTransaction(now)
		if filter != "" && filter != "all" && tx.Type != filter {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// TotalEarned sums points over earned transactions.
func TotalEarned(txs []Transaction) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type == TxEarned {
			total += tx.Points
		}
	}
	return total
}

// ParticipantList accepts a bare array or a {participants|results|data} wrapper.
type ParticipantList []Participant

func (l *ParticipantList) UnmarshalJSON(b []byte) error {
	items, err := shared.DecodeList[Participant](b, "participants", "results", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// RecordList accepts a bare array or a {participations|results|data} wrapper.
type RecordList []Record

func (l *RecordList) UnmarshalJSON(b []byte) error {
	items, err := shared.DecodeList[Record](b, "participations", "results", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}
