package stepwise_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/dsl"
)

type Order struct {
	ID     string
	Status string
}

type Receipt struct{ OrderID string }

// ExampleNew wires two steps: the second only accepts a paid order, which the
// first one promises to produce.
func ExampleNew() {
	b := dsl.New()

	b.Step("Pay").
		Bound("order_id", dsl.Type[string]()).
		Returns(dsl.Type[Order]()).
		Declares(dsl.Equal[Order]("Status", "paid")).
		Do(dsl.Fn1(func(ctx context.Context, id string) (Order, error) {
			return Order{ID: id, Status: "paid"}, nil
		}))

	b.Step("Ship").
		Param("order", dsl.Type[Order](), dsl.Equal[Order]("Status", "paid")).
		Returns(dsl.Type[Receipt]()).
		Do(dsl.Fn1(func(ctx context.Context, o Order) (Receipt, error) {
			return Receipt{OrderID: o.ID}, nil
		}))

	steps, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	sched, err := stepwise.New(steps)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range sched.Recipes() {
		fmt.Println("recipe:", r)
	}

	report, err := sched.Run(context.Background(), map[string]any{"order_id": "42"})
	if err != nil {
		log.Fatal(err)
	}
	final, _ := report.Recipes[0].Final()
	fmt.Printf("%+v\n", final)

	// Output:
	// recipe: Pay,Ship
	// {OrderID:42}
}
