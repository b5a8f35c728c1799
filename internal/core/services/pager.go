package services

import (
	"context"
	"fmt"
	"iter"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// PageFunc fetches a single page. Page numbers start at 1.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// Page is one batch of headers together with its page number.
type Page[T any] struct {
	Number int
	Items  []T
}

// Pages returns a lazy sequence over the pages served by fetch.
//
// Iteration starts at page 1. A page holding exactly pageSize items is followed
// by a request for the next page; a shorter page (including an empty one) is
// the last. A fetch error is yielded once with a zero Page and ends the
// sequence. Ranging over the sequence again restarts from page 1.
func Pages[T any](ctx context.Context, fetch PageFunc[T], pageSize int) iter.Seq2[Page[T], error] {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return func(yield func(Page[T], error) bool) {
		for number := 1; ; number++ {
			if err := ctx.Err(); err != nil {
				yield(Page[T]{}, err)
				return
			}

			items, err := fetch(ctx, number)
			if err != nil {
				yield(Page[T]{}, fmt.Errorf("fetch page %d: %w", number, err))
				return
			}

			if !yield(Page[T]{Number: number, Items: items}, nil) {
				return
			}
			if len(items) != pageSize {
				return
			}
		}
	}
}
