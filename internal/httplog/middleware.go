package httplog

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localsPhaseContext = "httplog_phase_context"
	localsController   = "httplog_controller"
	localsAction       = "httplog_action"
)

// Middleware adapts a fiber handler chain to the interceptor's lifecycle:
// it snapshots the request, attaches the phase context to the ctx, and
// runs response logging once the chain returns cleanly. When the chain
// errors the app's error handler owns the rest of the exchange; see
// ErrorHandler.
func Middleware(i *Interceptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(fiber.HeaderXRequestID, requestID)
		c.SetUserContext(WithRequestID(c.UserContext(), requestID))

		pc, err := i.OnRequestStart(snapshotRequest(c, requestID))
		if err != nil {
			return err
		}
		c.Locals(localsPhaseContext, pc)

		if err := c.Next(); err != nil {
			return err
		}
		return i.OnResponseReady(snapshotResponse(c, requestID), pc)
	}
}

// ErrorHandler reports the failure and replays response logging, since the
// middleware's completion path did not run. Emits exactly one error record
// followed by exactly one http record per failed exchange.
func ErrorHandler(i *Interceptor) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if reportErr := i.ReportError(c.UserContext(), "error", err, CallStack(1)); reportErr != nil {
			return reportErr
		}

		requestID, _ := RequestIDFrom(c.UserContext())
		snap := snapshotResponse(c, requestID)
		snap.Status = code
		if logErr := i.LogNow(snap, PhaseContextFrom(c)); logErr != nil {
			return logErr
		}

		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// PhaseContextFrom returns the phase context Middleware attached, or nil
// when the middleware never ran for this ctx.
func PhaseContextFrom(c *fiber.Ctx) *PhaseContext {
	pc, _ := c.Locals(localsPhaseContext).(*PhaseContext)
	return pc
}

// SetHandler records the controller/action identity a handler wants to
// appear in the record's handler field.
func SetHandler(c *fiber.Ctx, controller, action string) {
	c.Locals(localsController, controller)
	c.Locals(localsAction, action)
}

func snapshotRequest(c *fiber.Ctx, requestID string) *Snapshot {
	return &Snapshot{
		Method:         c.Method(),
		Path:           c.Path(),
		RequestHeaders: headerList(c.GetReqHeaders()),
		Params:         requestParams(c),
		Assigns:        assigns(c),
		RequestID:      requestID,
	}
}

func snapshotResponse(c *fiber.Ctx, requestID string) *Snapshot {
	return &Snapshot{
		Method:          c.Method(),
		Path:            c.Path(),
		RequestHeaders:  headerList(c.GetReqHeaders()),
		ResponseHeaders: headerList(c.GetRespHeaders()),
		Status:          c.Response().StatusCode(),
		Params:          requestParams(c),
		Assigns:         assigns(c),
		RequestID:       requestID,
	}
}

// headerList normalizes fiber's header map into the snapshot's ordered,
// lowercased pair list. Map iteration order is not stable, so keys are
// sorted to keep records deterministic.
func headerList(h map[string][]string) []Header {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Header, 0, len(h))
	for _, k := range keys {
		for _, v := range h[k] {
			out = append(out, Header{Key: strings.ToLower(k), Value: v})
		}
	}
	return out
}

func assigns(c *fiber.Ctx) map[string]any {
	a := map[string]any{}
	if controller, ok := c.Locals(localsController).(string); ok {
		a[AssignController] = controller
	}
	if action, ok := c.Locals(localsAction).(string); ok {
		a[AssignAction] = action
	}
	return a
}

// requestParams merges query, route and body parameters into one tree the
// way a form parser would present them. A JSON array body lands under
// "_json" since it has no keys of its own.
func requestParams(c *fiber.Ctx) any {
	params := map[string]any{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		params[string(k)] = string(v)
	})
	for k, v := range c.AllParams() {
		params[k] = v
	}

	ct := c.Get(fiber.HeaderContentType)
	switch {
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		var body any
		if err := json.Unmarshal(c.Body(), &body); err == nil {
			if obj, ok := body.(map[string]any); ok {
				for k, v := range obj {
					params[k] = v
				}
			} else if body != nil {
				params["_json"] = body
			}
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		c.Context().PostArgs().VisitAll(func(k, v []byte) {
			params[string(k)] = string(v)
		})
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			break
		}
		for k, vals := range form.Value {
			if len(vals) == 1 {
				params[k] = vals[0]
			} else {
				params[k] = vals
			}
		}
		for k, files := range form.File {
			if len(files) == 1 {
				params[k] = files[0]
			} else {
				params[k] = files
			}
		}
	}
	return params
}
