package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/taldoflemis/pizzeria/pacchetto/order"
	"github.com/taldoflemis/pizzeria/pacchetto/orderstore"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("cassiere")
	meter  = otel.Meter("cassiere")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type MainHandler struct {
	store     orderstore.Store
	validator *order.Validator
	feed      OrderPubSubber
	health    *healthgo.Health
	prefix    string

	submittedCounter metric.Int64Counter
	rejectedCounter  metric.Int64Counter
	listedHistogram  metric.Int64Histogram
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	store orderstore.Store,
	feed OrderPubSubber,
	health *healthgo.Health,
) (*MainHandler, error) {
	ctx := context.Background()

	submittedCounter, err := meter.Int64Counter(
		"cassiere.orders.submitted",
		metric.WithDescription("Number of orders persisted"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create submitted counter", slog.Any("err", err))
		return nil, err
	}

	rejectedCounter, err := meter.Int64Counter(
		"cassiere.orders.rejected",
		metric.WithDescription("Number of order submissions that were not persisted"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create rejected counter", slog.Any("err", err))
		return nil, err
	}

	listedHistogram, err := meter.Int64Histogram(
		"cassiere.orders.listed",
		metric.WithDescription("Number of orders returned by the admin listing"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create listed histogram", slog.Any("err", err))
		return nil, err
	}

	renderer, err := newTemplateRenderer()
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse views", slog.Any("err", err))
		return nil, err
	}

	logger := slog.Default()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name,
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	handler := &MainHandler{
		store:            store,
		validator:        order.NewValidator(),
		feed:             feed,
		health:           health,
		prefix:           normalizePrefix(settings.HTTP.Prefix),
		submittedCounter: submittedCounter,
		rejectedCounter:  rejectedCounter,
		listedHistogram:  listedHistogram,
	}

	root := e.Group(strings.TrimSuffix(handler.prefix, "/"))
	root.GET("/healthz", handler.HealthCheck)
	root.StaticFS("/public", echo.MustSubFS(publicFS, "public"))

	root.GET("/", handler.OrderForm)
	root.POST("/thankyou", handler.PlaceOrder)

	admin := root.Group("/admin")
	admin.GET("", handler.OrderSummary)
	admin.GET("/orders", handler.ListOrders)
	admin.GET("/live", handler.GetLiveOrdersSSE)
	admin.GET("/live/ws", handler.GetLiveOrdersWS)

	return handler, nil
}

// normalizePrefix returns prefix with exactly one leading and one trailing slash.
func normalizePrefix(prefix string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}

// OrderForm godoc
//
// @Summary Order form
// @Tags order
// @Produce html
// @Success 200 {string} string "html page"
// @Router / [get]
func (h *MainHandler) OrderForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewHome, formPage{
		Prefix:   h.prefix,
		Toppings: availableToppings,
		Sizes:    []string{order.SizeSmall, order.SizeMedium, order.SizeLarge},
	})
}

// PlaceOrder godoc
//
// @Summary Submit a new pizza order
// @Description Invalid submissions are answered with the list of validation messages.
// @Tags order
// @Accept x-www-form-urlencoded
// @Produce html
// @Produce json
// @Param fname formData string true "First name"
// @Param lname formData string true "Last name"
// @Param email formData string true "Email"
// @Param method formData string true "pickup or delivery"
// @Param toppings formData []string false "Toppings" collectionFormat(multi)
// @Param size formData string true "small, med or large"
// @Success 200 {array} string "validation errors, or the html confirmation"
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /thankyou [post]
func (h *MainHandler) PlaceOrder(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.PlaceOrder")
	defer span.End()

	err := c.Request().ParseForm()
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse order form", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	submission := submissionFromForm(c.Request().PostForm)

	result := h.validator.Validate(submission)
	if !result.IsValid {
		slog.InfoContext(ctx, "order submission rejected", slog.Any("errors", result.Errors))
		span.SetAttributes(attribute.StringSlice("order.validation-errors", result.Errors))
		h.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "validation")))
		return c.JSON(http.StatusOK, result.Errors)
	}

	normalized := order.Normalize(submission)

	id, err := h.store.InsertOrder(ctx, normalized)
	if err != nil {
		h.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "store")))
		return h.storeError(ctx, c, span, "failed to insert order", err)
	}

	persisted := order.PersistedOrder{ID: id, NormalizedOrder: normalized}
	span.SetAttributes(attribute.Int64("order.id", int64(id)))
	h.submittedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order.method", normalized.Method),
		attribute.String("order.size", normalized.Size),
	))
	slog.InfoContext(ctx, "order placed", slog.Int64("order-id", int64(id)))

	err = h.feed.PubOrder(ctx, persisted)
	if err != nil {
		// the order is stored, only the live feed misses it
		slog.WarnContext(ctx, "failed to publish order to live feed", slog.Int64("order-id", int64(id)), slog.Any("err", err))
	}

	return c.Render(http.StatusOK, viewThankYou, thankYouPage{Prefix: h.prefix, Order: persisted})
}

// submissionFromForm reads the order fields from the url-encoded body only.
// Bodies of any other content type leave form empty.
func submissionFromForm(form url.Values) order.Submission {
	return order.Submission{
		FirstName: form.Get("fname"),
		LastName:  form.Get("lname"),
		Email:     form.Get("email"),
		Method:    form.Get("method"),
		Toppings:  form["toppings"],
		Size:      form.Get("size"),
	}
}

// OrderSummary godoc
//
// @Summary Admin summary of every order
// @Tags admin
// @Produce html
// @Success 200 {string} string "html page"
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /admin [get]
func (h *MainHandler) OrderSummary(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.OrderSummary")
	defer span.End()

	orders, err := h.listOrders(ctx)
	if err != nil {
		return h.storeError(ctx, c, span, "failed to list orders", err)
	}

	return c.Render(http.StatusOK, viewOrderSummary, orderSummaryPage{Prefix: h.prefix, Orders: orders})
}

// ListOrders godoc
//
// @Summary List every order
// @Tags admin
// @Produce json
// @Success 200 {array} order.PersistedOrder
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /admin/orders [get]
func (h *MainHandler) ListOrders(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.ListOrders")
	defer span.End()

	orders, err := h.listOrders(ctx)
	if err != nil {
		return h.storeError(ctx, c, span, "failed to list orders", err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *MainHandler) listOrders(ctx context.Context) ([]order.PersistedOrder, error) {
	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	h.listedHistogram.Record(ctx, int64(len(orders)))
	slog.DebugContext(ctx, "listed orders", slog.Int("count", len(orders)))
	return orders, nil
}

// storeError logs a gateway failure and answers 503 when the store could not be
// reached, 500 otherwise.
func (h *MainHandler) storeError(ctx context.Context, c echo.Context, span trace.Span, msg string, err error) error {
	slog.ErrorContext(ctx, msg, slog.Any("err", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	status := http.StatusInternalServerError
	if errors.Is(err, orderstore.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]string{"error": http.StatusText(status)})
}

// GetLiveOrdersSSE godoc
//
// @Summary Get orders as they are placed via Server-Sent Events (SSE)
// @Tags admin
// @Produce  text/event-stream
// @Success 200 {object} order.PersistedOrder
// @Router /admin/live [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	subscriberID := uuid.NewString()
	ch, err := h.feed.SubLiveOrders(ctx, subscriberID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		return err
	}
	defer h.feed.UnsubLiveOrders(context.WithoutCancel(ctx), subscriberID)

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "client closed connection")
			return nil
		case o, open := <-ch:
			if !open {
				return nil
			}
			data, err := json.Marshal(o)
			if err != nil {
				slog.ErrorContext(ctx, "marshal order for SSE", slog.Any("err", err))
				continue
			}
			_, err = c.Response().Write([]byte("data: " + string(data) + "\n\n"))
			if err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return nil
			}
			flusher.Flush()
		}
	}
}

// GetLiveOrdersWS godoc
//
// @Summary Get orders as they are placed over a WebSocket
// @Tags admin
// @Success 101 {object} order.PersistedOrder
// @Router /admin/live/ws [get]
func (h *MainHandler) GetLiveOrdersWS(c echo.Context) error {
	ctx := c.Request().Context()

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already answered the client
		slog.WarnContext(ctx, "websocket upgrade failed", slog.Any("err", err))
		return nil
	}
	defer ws.Close()

	subscriberID := uuid.NewString()
	ch, err := h.feed.SubLiveOrders(ctx, subscriberID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"))
		return nil
	}
	defer h.feed.UnsubLiveOrders(context.WithoutCancel(ctx), subscriberID)

	// The client never sends anything, reading only notices when it goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			slog.InfoContext(ctx, "websocket client closed connection")
			return nil
		case <-ctx.Done():
			return nil
		case o, open := <-ch:
			if !open {
				return nil
			}
			if err := ws.WriteJSON(o); err != nil {
				slog.ErrorContext(ctx, "write websocket", slog.Any("err", err))
				return nil
			}
		}
	}
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}
