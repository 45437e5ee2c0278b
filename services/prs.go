package services

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
)

const (
	// prSessionWindow bounds the history scan to the most recent sessions.
	// Purely a query-cost cap, not a product rule.
	prSessionWindow = 50
	// prTopN is the number of leaderboard entries returned.
	prTopN = 8
)

// PersonalRecord is one leaderboard entry: the single best set for an
// exercise+variation pair, ranked by estimated one-rep max.
type PersonalRecord struct {
	Key          string  `json:"key"`
	Exercise     string  `json:"exercise"`
	Variation    string  `json:"variation"`
	BestWeightKG float64 `json:"best_weight_kg"`
	BestReps     int     `json:"best_reps"`
	BestE1RM     float64 `json:"best_e1rm"`
}

// EpleyE1RM estimates a one-rep max from a single set using the Epley
// formula: weight * (1 + reps/30).
func EpleyE1RM(weightKG float64, reps int) float64 {
	return weightKG * (1 + float64(reps)/30)
}

// PRCalculator folds recent set history into per-exercise personal records.
type PRCalculator struct {
	db *gorm.DB
}

func NewPRCalculator(db *gorm.DB) *PRCalculator {
	return &PRCalculator{db: db}
}

// TopRecords computes the top PRs over the user's recent sessions. Sets with
// zero reps or zero weight are excluded entirely rather than treated as
// zero-value records. Ties on e1rm keep the first set encountered during the
// fold (strict > comparison); the final order is descending by e1rm,
// truncated to the top 8.
func (p *PRCalculator) TopRecords(ctx context.Context, userID uint) ([]PersonalRecord, error) {
	var sessions []models.WorkoutSession
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("performed_on DESC").
		Limit(prSessionWindow).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []PersonalRecord{}, nil
	}

	sessionIDs := make([]uint, 0, len(sessions))
	for _, s := range sessions {
		sessionIDs = append(sessionIDs, s.ID)
	}

	var items []models.SessionItem
	if err := p.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []PersonalRecord{}, nil
	}

	itemByID := make(map[uint]models.SessionItem, len(items))
	itemIDs := make([]uint, 0, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
		itemIDs = append(itemIDs, it.ID)
	}

	var sets []models.Set
	if err := p.db.WithContext(ctx).
		Where("session_item_id IN ?", itemIDs).
		Order("id ASC").
		Find(&sets).Error; err != nil {
		return nil, err
	}

	best := make(map[string]PersonalRecord)
	var keys []string
	for _, set := range sets {
		if set.Reps <= 0 || set.WeightKG <= 0 {
			continue
		}
		item, ok := itemByID[set.SessionItemID]
		if !ok {
			continue
		}
		key := item.ExerciseID + ":" + item.VariationID
		e1rm := EpleyE1RM(set.WeightKG, set.Reps)
		current, seen := best[key]
		if seen && e1rm <= current.BestE1RM {
			continue
		}
		if !seen {
			keys = append(keys, key)
		}
		best[key] = PersonalRecord{
			Key:          key,
			Exercise:     labelOr(item.ExerciseTitle, item.ExerciseID),
			Variation:    labelOr(item.VariationTitle, item.VariationID),
			BestWeightKG: set.WeightKG,
			BestReps:     set.Reps,
			BestE1RM:     e1rm,
		}
	}

	records := make([]PersonalRecord, 0, len(keys))
	for _, key := range keys {
		records = append(records, best[key])
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].BestE1RM > records[j].BestE1RM
	})
	if len(records) > prTopN {
		records = records[:prTopN]
	}

	for i := range records {
		records[i].BestWeightKG = round1(records[i].BestWeightKG)
		records[i].BestE1RM = round1(records[i].BestE1RM)
	}
	return records, nil
}

// labelOr falls back to the raw id so the display is never blank, even for
// session items whose plan item was deleted.
func labelOr(title, id string) string {
	if title != "" {
		return title
	}
	return id
}
