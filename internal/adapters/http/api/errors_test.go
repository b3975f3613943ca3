package api

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKindErrors(t *testing.T) {
	Convey("Given kind errors", t, func() {
		cause := errors.New("missing weight")

		Convey("When wrapping a cause", func() {
			err := WrapKind("api.calculate", ErrBadRequest, cause)

			Convey("Then both kind and cause match and the message is layered", func() {
				So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.calculate: bad request: missing weight")
				So(message(err), ShouldEqual, "missing weight")
			})
		})

		Convey("When creating a bare kind", func() {
			err := NewKind("api.calculate", ErrPayloadTooLarge)

			Convey("Then the kind is the message", func() {
				So(errors.Is(err, ErrPayloadTooLarge), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.calculate: payload too large")
				So(message(err), ShouldEqual, "payload too large")
			})
		})

		Convey("When annotating with Wrap", func() {
			So(Wrap("op", nil), ShouldBeNil)
			err := Wrap("serve", NewKind("listen", ErrServe))
			So(errors.Is(err, ErrServe), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "serve: listen: serve failed")
		})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(413), ShouldEqual, "payload_too_large")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(400), ShouldEqual, "medium")
		So(getErrorSeverity(200), ShouldEqual, "low")
	})
}

func TestWriteJSON(t *testing.T) {
	Convey("Given a value that cannot be encoded", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusOK, map[string]float64{"time_to_sober": math.Inf(1)})

		Convey("Then a 500 with an error body is written instead of an empty 200", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			var body errorResponse
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Code, ShouldEqual, "internal_error")
			So(body.Error, ShouldNotBeEmpty)
		})
	})

	Convey("Given an encodable value", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})

		So(w.Code, ShouldEqual, http.StatusCreated)
		So(w.Body.String(), ShouldEqual, "{\"status\":\"ok\"}\n")
	})
}
