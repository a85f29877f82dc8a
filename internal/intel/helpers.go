// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/telekom/pathscope/internal/logger"
)

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
// Intelligence failures are expected, so they are logged as warnings.
func wrapError(ctx context.Context, err error, msg string, attrs ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)

	log.WarnContext(ctx, caser.String(msg), append([]any{"error", err}, attrs...)...)
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", msg, err)
}
