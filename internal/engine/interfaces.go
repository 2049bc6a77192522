package engine

import (
	"context"

	"github.com/Veraticus/spent/internal/model"
)

// Extractor turns free text into a best-effort structured guess.
type Extractor interface {
	Extract(ctx context.Context, text string) (model.ExtractionResult, error)
}

// Ledger persists confirmed expenses on behalf of a user.
type Ledger interface {
	Create(ctx context.Context, userID string, expense model.ValidatedExpense, rawInput string) (model.Expense, error)
	Update(ctx context.Context, userID, id string, expense model.ValidatedExpense) (model.Expense, error)
}

// Deleter removes a stored expense on behalf of a user.
type Deleter interface {
	Delete(ctx context.Context, userID, id string) error
}

// Notifier displays a transient notice.
type Notifier interface {
	ShowNotice(n Notice)
}
