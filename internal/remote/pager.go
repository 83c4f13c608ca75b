package remote

import (
	"context"
	"fmt"
	"treesync/internal/model"
)

type Page struct {
	Items     []*model.RemoteItem
	NextToken string
}

// PageFunc fetches one page. The first call gets an empty token.
type PageFunc func(ctx context.Context, token string) (Page, error)

// CollectPages requests pages until one comes back without a continuation
// token and returns the union of their items in page order. An item whose
// ID was already seen is dropped.
func CollectPages(ctx context.Context, fetch PageFunc) ([]*model.RemoteItem, error) {
	var items []*model.RemoteItem
	seen := make(map[string]struct{})
	used := make(map[string]struct{})

	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item == nil {
				continue
			}

			if item.ID != "" {
				if _, dup := seen[item.ID]; dup {
					continue
				}
				seen[item.ID] = struct{}{}
			}

			items = append(items, item)
		}

		if page.NextToken == "" {
			return items, nil
		}

		if _, dup := used[page.NextToken]; dup {
			return nil, fmt.Errorf("%w: %q", ErrPaginationLoop, page.NextToken)
		}
		used[page.NextToken] = struct{}{}
		token = page.NextToken
	}
}
