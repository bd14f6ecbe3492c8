package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alright-hq/alright-client/pkg/alright"
	"gopkg.in/yaml.v3"
)

var errUsage = errors.New("invalid arguments")

type orderReceipt struct {
	Consumer alright.ConsumerDTO `yaml:"consumer"`
	DishIDs  []string            `yaml:"dish_ids"`
	Mode     string              `yaml:"mode"`
}

// execute runs one command against client and writes the result as YAML.
func execute(ctx context.Context, client *alright.Client, out io.Writer, consumer string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	var (
		result any
		err    error
	)
	switch cmd {
	case "menu":
		var date alright.Date
		if date, err = dateArg(client, rest); err == nil {
			result, err = client.GetMenu(ctx, date)
		}
	case "entries", "maincourses", "sidedishes":
		var date alright.Date
		if date, err = dateArg(client, rest); err == nil {
			result, err = categoryDishes(ctx, client, cmd, date)
		}
	case "dish":
		if err = wantArgs(cmd, rest, 1); err == nil {
			result, err = client.GetDish(ctx, rest[0])
		}
	case "allergens":
		if err = wantArgs(cmd, rest, 1); err == nil {
			result, err = client.GetAllergens(ctx, rest[0])
		}
	case "order":
		if len(rest) == 0 {
			return fmt.Errorf("%w: order needs at least one dish id", errUsage)
		}
		if err = client.OrderDishes(ctx, consumer, rest); err == nil {
			result = orderReceipt{
				Consumer: alright.ConsumerDTO{ID: consumer},
				DishIDs:  rest,
				Mode:     string(client.Mode()),
			}
		}
	case "orders":
		var date alright.Date
		if date, err = dateArg(client, rest); err == nil {
			result, err = client.GetOrders(ctx, date)
		}
	case "get-order":
		if err = wantArgs(cmd, rest, 1); err == nil {
			result, err = client.GetOrder(ctx, rest[0])
		}
	case "pending":
		result, err = client.GetPendingOrders(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("render %s: %w", cmd, err)
	}
	return enc.Close()
}

func categoryDishes(ctx context.Context, client *alright.Client, segment string, date alright.Date) ([]alright.DishDTO, error) {
	cat, err := alright.ParseCategorySegment(segment)
	if err != nil {
		return nil, err
	}
	switch cat {
	case alright.Entry:
		return client.GetEntries(ctx, date)
	case alright.Main:
		return client.GetMainCourses(ctx, date)
	default:
		return client.GetSideDishes(ctx, date)
	}
}

// dateArg reads an optional date argument. No argument means today.
func dateArg(client *alright.Client, args []string) (alright.Date, error) {
	if len(args) == 0 {
		return alright.Date{}, nil
	}
	if len(args) > 1 {
		return alright.Date{}, fmt.Errorf("%w: expected at most one date", errUsage)
	}
	today := client.Today()
	switch strings.ToLower(args[0]) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	return alright.ParseDate(args[0])
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d argument(s)", errUsage, cmd, n)
	}
	return nil
}
