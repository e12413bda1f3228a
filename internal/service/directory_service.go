package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"autoshop/internal/aggregate"
	"autoshop/internal/clock"
	"autoshop/internal/domain"
	"autoshop/internal/format"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
)

var ErrInvalidQuery = errors.New("invalid query")

const (
	SortName      = "name"
	SortCreatedAt = "created_at"
)

type DirectoryService struct {
	source      domain.RecordSource
	normalizer  *aggregate.Normalizer
	phoneRegion string
	logger      *zerolog.Logger
}

func NewDirectoryService(source domain.RecordSource, clk clock.Clock, phoneRegion string, logger *zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		source:      source,
		normalizer:  aggregate.NewNormalizer(clk),
		phoneRegion: phoneRegion,
		logger:      logger,
	}
}

func (s *DirectoryService) Customers(ctx context.Context, q models.DirectoryQuery) (*models.Page[models.Customer], error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	raws, err := s.source.ListRaw(ctx, models.CollectionCustomers)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load customers")
		return nil, fmt.Errorf("load customers: %w", err)
	}

	customers := make([]models.Customer, 0, len(raws))
	for _, raw := range raws {
		c := s.normalizer.NormalizeCustomer(raw)
		c.Phone = format.Phone(c.Phone, s.phoneRegion)
		customers = append(customers, c)
	}

	return listPage(customers, q, directoryKeys[models.Customer]{
		name:      func(c models.Customer) string { return c.FullName() },
		createdAt: func(c models.Customer) time.Time { return c.CreatedAt },
		id:        func(c models.Customer) string { return c.ID },
		text: func(c models.Customer) []string {
			return []string{c.FullName(), c.Email, c.Phone, format.PhoneE164(c.Phone, s.phoneRegion), c.Address}
		},
	}), nil
}

func (s *DirectoryService) Employees(ctx context.Context, q models.DirectoryQuery) (*models.Page[models.Employee], error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	raws, err := s.source.ListRaw(ctx, models.CollectionEmployees)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load employees")
		return nil, fmt.Errorf("load employees: %w", err)
	}

	employees := make([]models.Employee, 0, len(raws))
	for _, raw := range raws {
		e := s.normalizer.NormalizeEmployee(raw)
		e.Phone = format.Phone(e.Phone, s.phoneRegion)
		employees = append(employees, e)
	}

	return listPage(employees, q, directoryKeys[models.Employee]{
		name:      func(e models.Employee) string { return e.FullName() },
		createdAt: func(e models.Employee) time.Time { return e.CreatedAt },
		id:        func(e models.Employee) string { return e.ID },
		text: func(e models.Employee) []string {
			return []string{e.FullName(), e.Email, e.Phone, format.PhoneE164(e.Phone, s.phoneRegion), e.Role}
		},
	}), nil
}

func validateQuery(q models.DirectoryQuery) error {
	switch strings.TrimPrefix(q.Sort, "-") {
	case "", SortName, SortCreatedAt:
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, q.Sort)
	}
	if q.Page < 0 || q.PageSize < 0 {
		return fmt.Errorf("%w: page and page_size must not be negative", ErrInvalidQuery)
	}
	return nil
}

type directoryKeys[T any] struct {
	name      func(T) string
	createdAt func(T) time.Time
	id        func(T) string
	text      func(T) []string
}

// listPage filters by case-insensitive substring, sorts and cuts one page.
func listPage[T any](items []T, q models.DirectoryQuery, keys directoryKeys[T]) *models.Page[T] {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if needle == "" || matches(keys.text(item), needle) {
			filtered = append(filtered, item)
		}
	}

	desc := strings.HasPrefix(q.Sort, "-")
	field := strings.TrimPrefix(q.Sort, "-")
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		var less, equal bool
		switch field {
		case SortCreatedAt:
			ta, tb := keys.createdAt(a), keys.createdAt(b)
			less, equal = ta.Before(tb), ta.Equal(tb)
		default:
			na, nb := strings.ToLower(keys.name(a)), strings.ToLower(keys.name(b))
			less, equal = na < nb, na == nb
		}
		if equal {
			return keys.id(a) < keys.id(b)
		}
		if desc {
			return !less
		}
		return less
	})

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = models.DefaultPageSize
	}
	if size > models.MaxPageSize {
		size = models.MaxPageSize
	}

	total := len(filtered)
	pages := (total + size - 1) / size
	// compare before multiplying, page comes straight from the query string
	from := total
	if page-1 < pages {
		from = (page - 1) * size
	}
	to := from + size
	if to > total {
		to = total
	}

	return &models.Page[T]{
		Items:    filtered[from:to],
		Total:    total,
		Page:     page,
		PageSize: size,
		Pages:    pages,
	}
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
