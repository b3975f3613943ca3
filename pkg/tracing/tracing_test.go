package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given tracing configs", t, func() {
		ctx := context.Background()

		Convey("When tracing is disabled", func() {
			p, err := New(ctx, Config{Enabled: false, Exporter: "bogus"})

			Convey("Then a noop provider is returned", func() {
				So(err, ShouldBeNil)
				So(p.Tracer(), ShouldNotBeNil)
				So(p.Shutdown(ctx), ShouldBeNil)

				_, span := p.Tracer().Start(ctx, "noop")
				So(span.SpanContext().IsValid(), ShouldBeFalse)
				span.End()
			})
		})

		Convey("When the exporter is unknown", func() {
			_, err := New(ctx, Config{Enabled: true, Exporter: "jaeger"})

			Convey("Then ErrUnsupportedExporter is returned", func() {
				So(errors.Is(err, ErrUnsupportedExporter), ShouldBeTrue)
			})
		})

		Convey("When the zipkin exporter is selected", func() {
			p, err := New(ctx, Config{Enabled: true, Exporter: ExporterZipkin, SampleRate: 5})

			Convey("Then a real provider is built", func() {
				So(err, ShouldBeNil)
				So(p.sdk, ShouldNotBeNil)
				So(p.Shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When the otlp exporter is selected", func() {
			p, err := New(ctx, Config{Enabled: true, Exporter: ExporterOTLP, Endpoint: "127.0.0.1:4318"})

			Convey("Then a real provider is built", func() {
				So(err, ShouldBeNil)
				So(p.sdk, ShouldNotBeNil)
				So(p.Shutdown(ctx), ShouldBeNil)
			})
		})
	})
}

func TestSampleRate(t *testing.T) {
	Convey("Given an enabled provider", t, func() {
		ctx := context.Background()

		Convey("When the sample rate is zero", func() {
			p, err := New(ctx, Config{Enabled: true, Exporter: ExporterOTLP, SampleRate: 0})
			So(err, ShouldBeNil)
			defer func() { _ = p.Shutdown(ctx) }()

			_, span := p.Tracer().Start(ctx, "root")
			span.End()

			Convey("Then root spans are not sampled", func() {
				So(span.SpanContext().IsValid(), ShouldBeTrue)
				So(span.SpanContext().IsSampled(), ShouldBeFalse)
			})
		})

		Convey("When the sample rate is one", func() {
			p, err := New(ctx, Config{Enabled: true, Exporter: ExporterOTLP, SampleRate: 1})
			So(err, ShouldBeNil)
			defer func() { _ = p.Shutdown(ctx) }()

			_, span := p.Tracer().Start(ctx, "root")
			span.End()

			Convey("Then root spans are sampled", func() {
				So(span.SpanContext().IsSampled(), ShouldBeTrue)
			})
		})
	})

	Convey("Given sampler rates", t, func() {
		So(sampler(-1).Description(), ShouldContainSubstring, "root:AlwaysOffSampler")
		So(sampler(0).Description(), ShouldContainSubstring, "root:AlwaysOffSampler")
		So(sampler(0.5).Description(), ShouldContainSubstring, "root:TraceIDRatioBased{0.5}")
		So(sampler(5).Description(), ShouldContainSubstring, "root:AlwaysOnSampler")
	})
}

func TestRecordError(t *testing.T) {
	Convey("Given a provider backed by an in-memory exporter", t, func() {
		exp := tracetest.NewInMemoryExporter()
		p := NewWithSDK(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)))

		Convey("When a span records an error", func() {
			_, span := p.Tracer().Start(context.Background(), "work")
			RecordError(span, errors.New("boom"))
			RecordError(span, nil)
			span.End()

			Convey("Then the exported span is marked failed", func() {
				spans := exp.GetSpans()
				So(len(spans), ShouldEqual, 1)
				So(spans[0].Name, ShouldEqual, "work")
				So(spans[0].Status.Code, ShouldEqual, codes.Error)
				So(spans[0].Status.Description, ShouldEqual, "boom")
			})
		})
	})
}
