package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// AlternativesService finds and ranks other sellers stocking the items
// of an existing order.
type AlternativesService struct {
	orderRepo   interfaces.OrderRepository
	invRepo     interfaces.InventoryRepository
	sellers     interfaces.SellerResolver
	concurrency int
}

// NewAlternativesService creates a new alternatives service
func NewAlternativesService(
	orderRepo interfaces.OrderRepository,
	invRepo interfaces.InventoryRepository,
	sellers interfaces.SellerResolver,
	concurrency int,
) *AlternativesService {
	if concurrency < 1 {
		concurrency = 8
	}
	return &AlternativesService{
		orderRepo:   orderRepo,
		invRepo:     invRepo,
		sellers:     sellers,
		concurrency: concurrency,
	}
}

// sellerAggregate accumulates per-seller availability while grouping
// inventory records.
type sellerAggregate struct {
	sellerID     string
	itemCount    int
	totalPrice   float64
	seenVariants map[string]struct{}
}

// FindAlternativeSellers runs the fan-out/aggregate/rank pipeline.
// Sellers whose identity lookup fails are excluded rather than failing
// the whole request; zero matches yield an empty result.
func (s *AlternativesService) FindAlternativeSellers(ctx context.Context, orderID string, query *models.AlternativesQuery) ([]models.AlternativeSeller, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, models.NewValidationError("order_id", "invalid order id", orderID)
	}

	filter := query.Filter
	if filter == "" {
		filter = models.RankingSuggested
	}
	if !models.IsValidRankingFilter(filter) {
		return nil, models.NewValidationError("filter", "unknown ranking filter", string(filter))
	}

	hasCoords := query.Latitude != nil && query.Longitude != nil
	if filter == models.RankingNearest && !hasCoords {
		return nil, models.NewValidationError("latitude", "nearest ranking requires latitude and longitude", nil)
	}

	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.NewNotFoundError("order", orderID)
	}

	requestedQty := make(map[string]int, len(order.Items))
	for _, item := range order.Items {
		requestedQty[item.VariantID] += item.Quantity
	}

	records, err := s.invRepo.FindByVariants(ctx, order.DistinctVariantIDs(), order.SellerIDs())
	if err != nil {
		return nil, err
	}

	aggregates := s.groupBySeller(records, requestedQty)
	if len(aggregates) == 0 {
		return []models.AlternativeSeller{}, nil
	}

	resolved := s.resolveSellers(ctx, aggregates)

	results := make([]models.AlternativeSeller, 0, len(resolved))
	for i, agg := range aggregates {
		seller := resolved[i]
		if seller == nil {
			continue
		}

		entry := models.AlternativeSeller{
			SellerID:   agg.sellerID,
			SellerName: seller.Name,
			Address:    seller.Address,
			Phone:      seller.Phone,
			ItemCount:  agg.itemCount,
			TotalPrice: agg.totalPrice,
		}
		if hasCoords && seller.Latitude != nil && seller.Longitude != nil {
			distance := haversineMeters(*query.Latitude, *query.Longitude, *seller.Latitude, *seller.Longitude)
			entry.DistanceMeters = &distance
		}
		results = append(results, entry)
	}

	rankResults(results, filter)
	return results, nil
}

// groupBySeller aggregates matching inventory per seller. Each variant
// counts once per seller, priced at its cheapest sellable batch;
// records whose batches are all empty or expired drop out. The
// aggregate order follows the first appearance of each seller in the
// (seller-sorted) record list, keeping the pipeline deterministic.
func (s *AlternativesService) groupBySeller(records []models.InventoryRecord, requestedQty map[string]int) []*sellerAggregate {
	now := time.Now().UTC()
	byID := make(map[string]*sellerAggregate)
	var aggregates []*sellerAggregate

	for _, record := range records {
		price, ok := record.Batches.CheapestUnitPrice(now)
		if !ok {
			continue
		}

		agg := byID[record.SellerID]
		if agg == nil {
			agg = &sellerAggregate{
				sellerID:     record.SellerID,
				seenVariants: make(map[string]struct{}),
			}
			byID[record.SellerID] = agg
			aggregates = append(aggregates, agg)
		}

		if _, seen := agg.seenVariants[record.VariantID]; seen {
			continue
		}
		agg.seenVariants[record.VariantID] = struct{}{}

		qty := requestedQty[record.VariantID]
		agg.itemCount++
		agg.totalPrice += float64(qty) * price
	}

	return aggregates
}

// resolveSellers runs the identity lookups concurrently, waiting for
// all of them. One seller's failure never cancels the others; failed
// entries stay nil and are excluded by the caller.
func (s *AlternativesService) resolveSellers(ctx context.Context, aggregates []*sellerAggregate) []*models.Seller {
	resolved := make([]*models.Seller, len(aggregates))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i, agg := range aggregates {
		i, agg := i, agg
		group.Go(func() error {
			seller, err := s.sellers.ResolveSeller(groupCtx, agg.sellerID)
			if err != nil {
				log.Warn().Err(err).
					Str("seller_id", agg.sellerID).
					Msg("Excluding seller after failed identity resolution")
				return nil
			}
			mu.Lock()
			resolved[i] = seller
			mu.Unlock()
			return nil
		})
	}

	// Goroutines always return nil, so this only waits.
	_ = group.Wait()

	return resolved
}

// rankResults orders the entries by the selected strategy. The sorts
// are stable so repeated queries over unchanged data return the same
// ordering.
func rankResults(results []models.AlternativeSeller, filter models.RankingFilter) {
	switch filter {
	case models.RankingCheapest:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].TotalPrice < results[j].TotalPrice
		})
	case models.RankingNearest:
		sort.SliceStable(results, func(i, j int) bool {
			di, dj := results[i].DistanceMeters, results[j].DistanceMeters
			switch {
			case di == nil && dj == nil:
				return false
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return *di < *dj
			}
		})
	default: // suggested
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].ItemCount != results[j].ItemCount {
				return results[i].ItemCount > results[j].ItemCount
			}
			return results[i].TotalPrice < results[j].TotalPrice
		})
	}
}
