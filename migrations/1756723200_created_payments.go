package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("payments")

		collection.Fields.Add(
			&core.TextField{
				Name:     "name",
				Required: true,
			},
			&core.TextField{
				Name:     "dept",
				Required: true,
			},
			&core.TextField{
				Name:     "student_id",
				Required: true,
			},
			&core.TextField{
				Name: "phone",
			},
			&core.SelectField{
				Name:      "ticket_type",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"A", "B", "C"},
			},
			&core.NumberField{
				Name:     "price",
				Required: true,
				OnlyInt:  true,
			},
			&core.TextField{
				Name: "utr",
			},
			&core.TextField{
				Name: "ref_code",
			},
			&core.SelectField{
				Name:      "status",
				MaxSelect: 1,
				Values:    []string{"PENDING", "CONFIRMED"},
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("payments")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
