package httpapi

import (
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/i474232898/marketscan/internal/engine"
	"github.com/i474232898/marketscan/internal/featured"
	"github.com/i474232898/marketscan/internal/market"
	"github.com/i474232898/marketscan/internal/prediction"
	"github.com/i474232898/marketscan/internal/query"
)

// Version is reported by the root banner and the CLI.
var Version = "1.0.0"

// DefaultFeaturedLimit applies when /featured is called without a limit.
const DefaultFeaturedLimit = 6

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *engine.Service, featuredLimit int) {
	if featuredLimit <= 0 {
		featuredLimit = DefaultFeaturedLimit
	}

	app.Get("/", func(c *fiber.Ctx) error {
		p := service.Predictor()
		return c.JSON(fiber.Map{
			"message":        "MarketScan backend",
			"version":        Version,
			"status":         "running",
			"llm_configured": p.Configured(),
			"llm_caller":     p.CallerName(),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		p := service.Predictor()
		body := fiber.Map{
			"status":         "healthy",
			"llm_configured": p.Configured(),
			"llm_caller":     p.CallerName(),
		}
		if h := service.History(); len(h) > 0 {
			last := h[len(h)-1]
			body["dataset"] = fiber.Map{
				"source":       last.Source,
				"generated_at": last.GeneratedAt,
				"loaded_at":    last.LoadedAt,
				"markets":      last.Markets,
				"warnings":     last.Warnings,
			}
		}
		return c.JSON(body)
	})

	app.Get("/markets", func(c *fiber.Ctx) error {
		ds, err := service.Dataset()
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"markets":      ds.MarketsOf(),
			"markets_meta": ds.MarketsMeta(),
		})
	})

	app.Get("/commodities/:market", func(c *fiber.Ctx) error {
		ds, err := service.Dataset()
		if err != nil {
			return err
		}
		m := c.Params("market")
		if !ds.HasMarket(m) {
			return fiber.NewError(fiber.StatusNotFound, "market not found")
		}
		commodities := ds.CommoditiesOf(m)
		return c.JSON(fiber.Map{
			"commodities": commodities,
			"items_meta":  ds.ItemsMeta(commodities),
		})
	})

	app.Get("/prices/:market/:commodity", func(c *fiber.Ctx) error {
		v, err := service.Prices(c.Params("market"), c.Params("commodity"))
		if err != nil {
			return err
		}
		return c.JSON(roundView(v))
	})

	app.Post("/predict", func(c *fiber.Ctx) error {
		var req predictRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(req.Dates) > 0 && len(req.Dates) != len(req.Prices) {
			return fiber.NewError(fiber.StatusBadRequest, "dates and prices must have the same length")
		}
		for _, p := range req.Prices {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return fiber.NewError(fiber.StatusBadRequest, "prices must be finite numbers")
			}
		}

		res := service.Predict(c.UserContext(), prediction.Request(req))
		return c.JSON(res)
	})

	app.Get("/featured", func(c *fiber.Ctx) error {
		q := featuredQuery{Limit: featuredLimit}
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		items, err := service.Featured(q.Limit, q.City)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"featured": roundItems(items)})
	})

	app.Get("/resolve", func(c *fiber.Ctx) error {
		text := c.Query("q")
		if text == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}
		r, err := service.Resolve(text)
		if err != nil {
			return err
		}
		return c.JSON(r)
	})

	app.Post("/check", func(c *fiber.Ctx) error {
		var req checkRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sess := engine.NewQuerySession(req.Query)
		if req.Market != "" {
			sess = engine.NewSelectionSession(req.Market, req.Commodity)
		}
		res, err := service.Check(c.UserContext(), sess)
		if err != nil {
			return err
		}
		res.Prices = roundView(res.Prices)
		return c.JSON(res)
	})

	app.Get("/sample-data", func(c *fiber.Ctx) error {
		ds, err := service.Dataset()
		if err != nil {
			return err
		}
		return c.JSON(ds.Raw())
	})
}

// ErrorHandler is the central error response. Domain errors are mapped to
// status codes here so handlers can return them unchanged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"error": true, "message": err.Error()}

	var (
		fe *fiber.Error
		ue *query.UnresolvedError
	)
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &ue):
		code = fiber.StatusUnprocessableEntity
		body["reason"] = ue.Reason
		if ue.Market != "" {
			body["market"] = ue.Market
		}
		if ue.Commodity != "" {
			body["commodity"] = ue.Commodity
		}
	case errors.Is(err, market.ErrUnknownMarket), errors.Is(err, market.ErrSeriesUnavailable):
		code = fiber.StatusNotFound
	case errors.Is(err, market.ErrNoDataset):
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(body)
}

// predictRequest mirrors prediction.Request with validation rules.
type predictRequest struct {
	Market    string    `json:"market" validate:"required"`
	Commodity string    `json:"commodity" validate:"required"`
	Prices    []float64 `json:"prices" validate:"required"`
	Dates     []string  `json:"dates"`
}

type featuredQuery struct {
	Limit int    `query:"limit" validate:"gte=1,lte=50"`
	City  string `query:"city"`
}

// checkRequest takes either free text or an explicit selection.
type checkRequest struct {
	Query     string `json:"query" validate:"required_without_all=Market Commodity"`
	Market    string `json:"market" validate:"required_with=Commodity"`
	Commodity string `json:"commodity" validate:"required_with=Market"`
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundView(v engine.PriceView) engine.PriceView {
	v.ChangePercent = round2(v.ChangePercent)
	return v
}

func roundItems(items []featured.Item) []featured.Item {
	out := make([]featured.Item, len(items))
	for i, it := range items {
		it.ChangePercent = round2(it.ChangePercent)
		out[i] = it
	}
	return out
}
