package quotes

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

const seedDealerCount = 3

var seedMessages = []string{
	"매장 방문 시 추가 할인 가능합니다.",
	"당일 개통 가능하고 사은품 드립니다.",
	"재고 보유 중입니다. 채팅으로 문의 주세요.",
	"카드 제휴 할인까지 적용한 금액입니다.",
}

type dealerLister interface {
	ListActive(ctx context.Context, limit int) ([]models.Dealer, error)
}

// Seeder posts a handful of dealer quotes against a fresh request so the
// auction never starts empty. Enabled through the seed_quotes feature flag.
type Seeder struct {
	db      txRunner
	repo    *Repository
	dealers dealerLister
	outbox  outboxEmitter
	term    int
	intn    func(n int) int
}

func NewSeeder(client txRunner, repo *Repository, dealers dealerLister, emitter outboxEmitter, contractTerm int) (*Seeder, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("quotes repository is required")
	}
	if dealers == nil {
		return nil, fmt.Errorf("dealer lister is required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if contractTerm <= 0 {
		contractTerm = 24
	}
	return &Seeder{
		db:      client,
		repo:    repo,
		dealers: dealers,
		outbox:  emitter,
		term:    contractTerm,
		intn:    rand.IntN,
	}, nil
}

func (s *Seeder) Seed(ctx context.Context, request *models.QuoteRequest) error {
	if request.Device == nil {
		return fmt.Errorf("request device not loaded")
	}

	dealers, err := s.dealers.ListActive(ctx, seedDealerCount)
	if err != nil {
		return fmt.Errorf("list dealers: %w", err)
	}
	if len(dealers) == 0 {
		return nil
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for i := range dealers {
			dealer := &dealers[i]
			quote := s.buildQuote(request, dealer)
			if err := repo.InsertQuote(ctx, quote); err != nil {
				return fmt.Errorf("insert seed quote: %w", err)
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventQuoteSubmitted,
				AggregateType: enums.AggregateQuote,
				AggregateID:   quote.ID,
				Actor:         &outbox.ActorRef{UserID: dealer.UserID, DealerID: &dealer.ID, Role: string(enums.ActorRoleDealer)},
				Version:       1,
				OccurredAt:    request.CreatedAt,
				Data: payloads.QuoteSubmittedEvent{
					QuoteID:      quote.ID,
					RequestID:    request.ID,
					RequestOwner: request.UserID,
					DealerID:     dealer.ID,
					DealerName:   dealer.StoreName,
					TotalCost24M: quote.TotalCost24M,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return fmt.Errorf("emit seed event: %w", err)
			}
		}

		updates := map[string]any{
			"quote_count": gorm.Expr("quote_count + ?", len(dealers)),
			"status":      enums.RequestStatusQuoted,
		}
		if err := repo.UpdateRequest(ctx, request.ID, updates); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		request.QuoteCount += len(dealers)
		request.Status = enums.RequestStatusQuoted
		return nil
	})
}

// buildQuote prices around the device factory price with randomized carrier
// subsidies, all in thousand-won steps.
func (s *Seeder) buildQuote(request *models.QuoteRequest, dealer *models.Dealer) *models.Quote {
	devicePrice := request.Device.OriginalPrice - s.stepped(0, 100_000)
	if devicePrice < 0 {
		devicePrice = request.Device.OriginalPrice
	}
	monthlyFee := 45_000 + s.stepped(0, 50_000)
	subsidy := 300_000 + s.stepped(0, 300_000)
	discount := s.stepped(0, 200_000)

	return &models.Quote{
		RequestID:          request.ID,
		DealerID:           dealer.ID,
		DevicePrice:        devicePrice,
		MonthlyFee:         monthlyFee,
		Subsidy:            subsidy,
		AdditionalDiscount: discount,
		TotalCost24M:       TotalCost(devicePrice, monthlyFee, subsidy, discount, s.term),
		Message:            &seedMessages[s.intn(len(seedMessages))],
		Status:             enums.QuoteStatusPending,
	}
}

func (s *Seeder) stepped(min, span int64) int64 {
	if span <= 0 {
		return min
	}
	return min + int64(s.intn(int(span/1_000)+1))*1_000
}
