package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/surf-forecast/internal/forecast"
	"github.com/i474232898/surf-forecast/internal/forecast/stormglass"
	"github.com/i474232898/surf-forecast/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *forecast.Service, beaches forecast.BeachStore, runs forecast.RunStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		list, err := listBeaches(c, beaches)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load beaches")
		}

		slots, err := service.ProcessForecastForBeaches(c.UserContext(), list)
		if err != nil {
			return forecastError(c, err)
		}

		return c.JSON(slots)
	})

	v1.Get("/beaches", func(c *fiber.Ctx) error {
		list, err := listBeaches(c, beaches)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load beaches")
		}
		return c.JSON(list)
	})

	v1.Post("/beaches", func(c *fiber.Ctx) error {
		var req beachRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		beach := req.toBeach()
		id, err := beaches.Create(c.UserContext(), beach)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store beach")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    id,
			"beach": beach,
		})
	})

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		run, err := runs.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast runs recorded")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest run")
		}
		return c.JSON(run)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		list, err := runs.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast runs for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast runs")
		}

		return c.JSON(fiber.Map{
			"from": req.From,
			"to":   req.To,
			"runs": list,
		})
	})
}

func listBeaches(c *fiber.Ctx, beaches forecast.BeachStore) ([]forecast.Beach, error) {
	if user := c.Query("user"); user != "" {
		return beaches.ListByUser(c.UserContext(), user)
	}
	return beaches.List(c.UserContext())
}

// forecastError reports an aggregation failure, naming the StormGlass failure kind when known.
func forecastError(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"error":   true,
		"message": err.Error(),
	}

	var sgErr *stormglass.Error
	if errors.As(err, &sgErr) {
		body["upstream"] = sgErr.Kind.String()
		if sgErr.Kind == stormglass.KindService {
			body["upstreamStatus"] = sgErr.Status
		}
	}

	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

// beachRequest is the body accepted when creating a beach.
type beachRequest struct {
	Name     string   `json:"name" validate:"required"`
	Position string   `json:"position" validate:"required,oneof=N S E W"`
	Lat      *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng      *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	User     string   `json:"user"`
}

func (r beachRequest) toBeach() forecast.Beach {
	return forecast.Beach{
		Name:     r.Name,
		Position: forecast.BeachPosition(r.Position),
		Lat:      *r.Lat,
		Lng:      *r.Lng,
		User:     r.User,
	}
}

// rangeQuery holds query parameters for the runs endpoint.
type rangeQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (q *rangeQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	q.From = from
	q.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
