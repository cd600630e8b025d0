package store

import (
	"context"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

// Repo defines storage operations for chat settings, members, exclusions,
// trusted pickers, custom phrases and hit statistics. Chats are independent
// units of concurrency control: UpdateChat is the per-chat critical section.
type Repo interface {
	// GetChat returns the settings record for a chat, or the defaults if the
	// chat was never written (lazy creation happens on first UpdateChat).
	GetChat(ctx context.Context, chatID int64) (*domain.ChatSettings, error)
	// UpdateChat runs fn against the current record inside one transaction
	// and persists the result. If fn returns an error the transaction is
	// rolled back and the error is returned unchanged. This is how the limit
	// gate's acquire+commit stays atomic against concurrent invocations.
	UpdateChat(ctx context.Context, chatID int64, fn func(*domain.ChatSettings) error) error
	// ListChatIDs returns every chat with a settings record, in a stable order.
	ListChatIDs(ctx context.Context) ([]int64, error)

	TouchMember(ctx context.Context, chatID int64, m domain.Member) error
	Members(ctx context.Context, chatID int64) ([]domain.Member, error)
	Member(ctx context.Context, chatID, userID int64) (*domain.Member, error)
	MemberByUsername(ctx context.Context, chatID int64, username string) (*domain.Member, error)

	Excluded(ctx context.Context, chatID int64) ([]int64, error)
	AddExcluded(ctx context.Context, chatID, userID int64) error
	RemoveExcluded(ctx context.Context, chatID, userID int64) error

	TrustedPickers(ctx context.Context, chatID int64) ([]int64, error)
	AddTrustedPicker(ctx context.Context, chatID, userID int64) error
	RemoveTrustedPicker(ctx context.Context, chatID, userID int64) error

	CustomPhrases(ctx context.Context, chatID int64, cat domain.Category) ([]string, error)
	AddCustomPhrase(ctx context.Context, chatID int64, cat domain.Category, phrase string) error
	// DeleteCustomPhrase removes the phrase at the given zero-based index and
	// shifts subsequent indices down by one. Returns false when the index
	// does not exist.
	DeleteCustomPhrase(ctx context.Context, chatID int64, cat domain.Category, idx int) (bool, error)
	PhraseSource(ctx context.Context, chatID int64, cat domain.Category) (domain.PhraseSource, error)
	SetPhraseSource(ctx context.Context, chatID int64, cat domain.Category, src domain.PhraseSource) error

	IncrementHit(ctx context.Context, chatID, userID int64) error
	// Hits returns the chat's stat table ordered by hit count descending.
	Hits(ctx context.Context, chatID int64) ([]domain.StatEntry, error)

	Close() error
}
