package services

import (
	"errors"
	"sync"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"gorm.io/gorm"
)

// resolveChunkSize caps how many ids go into a single batched lookup,
// matching the id-set limit of the original document store.
const resolveChunkSize = 10

// groupFetcher abstracts the two lookup shapes the resolver needs.
type groupFetcher interface {
	FetchByIDs(ids []uint) ([]models.Group, error)
	FetchByID(id uint) (*models.Group, error)
}

type gormGroupFetcher struct {
	db *gorm.DB
}

func (f *gormGroupFetcher) FetchByIDs(ids []uint) ([]models.Group, error) {
	var groups []models.Group
	if err := f.db.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (f *gormGroupFetcher) FetchByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := f.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GroupResolver resolves sets of group ids to group records.
type GroupResolver struct {
	fetcher groupFetcher
}

func NewGroupResolver(db *gorm.DB) *GroupResolver {
	return &GroupResolver{fetcher: &gormGroupFetcher{db: db}}
}

// Resolve maps each id in ids to its group record, omitting ids that do not
// resolve. Duplicates are tolerated. The input is partitioned into chunks of
// at most resolveChunkSize ids; chunks are fetched concurrently and a failed
// batched lookup falls back to one-by-one fetches for that chunk only, so a
// single bad chunk never fails the whole resolution. An empty input returns
// an empty map without touching the store.
func (r *GroupResolver) Resolve(ids []uint) map[uint]models.Group {
	unique := dedupIDs(ids)
	result := make(map[uint]models.Group, len(unique))
	if len(unique) == 0 {
		return result
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, chunk := range chunkIDs(unique, resolveChunkSize) {
		wg.Add(1)
		go func(chunk []uint) {
			defer wg.Done()

			groups, err := r.fetcher.FetchByIDs(chunk)
			if err != nil {
				logger.Warn().Err(err).Int("chunk_size", len(chunk)).Msg("batched group lookup failed, falling back to single fetches")
				groups = r.fetchOneByOne(chunk)
			}

			mu.Lock()
			for _, g := range groups {
				result[g.ID] = g
			}
			mu.Unlock()
		}(chunk)
	}

	wg.Wait()
	return result
}

// fetchOneByOne is the serial per-chunk fallback. Individual failures are
// logged and skipped; whatever resolves is returned.
func (r *GroupResolver) fetchOneByOne(ids []uint) []models.Group {
	groups := make([]models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := r.fetcher.FetchByID(id)
		if err != nil {
			logger.Warn().Err(err).Uint("group_id", id).Msg("single group lookup failed")
			continue
		}
		if group != nil {
			groups = append(groups, *group)
		}
	}
	return groups
}

// dedupIDs removes duplicates preserving first-seen order.
func dedupIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []uint, size int) [][]uint {
	if size <= 0 {
		return [][]uint{ids}
	}
	var chunks [][]uint
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
