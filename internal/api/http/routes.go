package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/windmap/internal/gfs"
	"github.com/i474232898/windmap/internal/route"
	"github.com/i474232898/windmap/internal/weather"
)

var validate = validator.New()

// DocumentHeader names the converted document a windmap response came from.
const DocumentHeader = "X-Windmap-Document"

// Deps are the services behind the API routes.
type Deps struct {
	Resolver *gfs.Resolver
	Wind     *weather.Service
	Routes   *route.Service
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/windmap", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		doc, err := deps.Resolver.Resolve(c.UserContext(), q.Forecast)
		if err != nil {
			if errors.Is(err, gfs.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "no data files found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read forecast data")
		}

		c.Set(DocumentHeader, doc.Name)
		return c.JSON(doc.Content)
	})

	v1.Get("/windmap/documents", func(c *fiber.Ctx) error {
		names, err := deps.Resolver.Documents()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list forecast data")
		}
		return c.JSON(fiber.Map{"documents": names})
	})

	v1.Get("/wind/current", func(c *fiber.Ctx) error {
		var q coordsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		wind, err := deps.Wind.CurrentWind(c.UserContext(), weather.Coordinates{Lat: *q.Lat, Lon: *q.Lon})
		if err != nil {
			if errors.Is(err, weather.ErrNoProviders) {
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch wind data")
		}
		return c.JSON(wind)
	})

	v1.Get("/route", func(c *fiber.Ctx) error {
		data, err := deps.Routes.RoutingData()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to get routing data")
		}
		return c.JSON(data)
	})

	v1.Get("/route/mid", func(c *fiber.Ctx) error {
		mid, err := deps.Routes.MidPoint()
		if err != nil {
			if errors.Is(err, route.ErrNoDeliveries) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to get midpoint")
		}
		return c.JSON(mid)
	})
}

// forecastQuery holds the optional forecast hour of the windmap endpoint.
type forecastQuery struct {
	Forecast int `validate:"min=0,max=384"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	if s := c.Query("forecast"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("forecast must be an integer number of hours")
		}
		q.Forecast = n
	}
	return validate.Struct(q)
}

// coordsQuery holds the coordinates of the current wind endpoint.
type coordsQuery struct {
	Lat *float64 `validate:"required,min=-90,max=90"`
	Lon *float64 `validate:"required,min=-180,max=180"`
}

func (q *coordsQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.Lat, err = parseFloatQuery(c, "lat"); err != nil {
		return err
	}
	if q.Lon, err = parseFloatQuery(c, "lon"); err != nil {
		return err
	}
	return validate.Struct(q)
}

func parseFloatQuery(c *fiber.Ctx, key string) (*float64, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}
