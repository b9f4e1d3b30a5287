// Copyright 2026 Paideia DAO
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package paideia

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func (c *Coordinator) setupTracing() error {
	res := sdkresource.NewSchemaless(
		attribute.String("service.name", "paideia-coordinator"),
	)
	tracerProviderOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}
	if c.config.tracingStdout {
		stdoutExporter, err := stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		tracerProviderOpts = append(
			tracerProviderOpts,
			sdktrace.WithBatcher(stdoutExporter),
		)
	}
	// The OTLP exporter is configured via the OTEL_EXPORTER_OTLP_* env vars
	otlpExporter, err := otlptracehttp.New(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	tracerProviderOpts = append(
		tracerProviderOpts,
		sdktrace.WithBatcher(otlpExporter),
	)
	tracerProvider := sdktrace.NewTracerProvider(tracerProviderOpts...)
	otel.SetTracerProvider(tracerProvider)
	c.shutdownFuncs = append(c.shutdownFuncs, tracerProvider.Shutdown)
	return nil
}
