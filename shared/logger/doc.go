// Copyright 2025 AxonFlow
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

/*
Package logger provides structured JSON logging for the decision governance
pipeline's components.

# Overview

The logger package outputs one JSON object per log line through the
standard library logger (stderr unless redirected with log.SetOutput), making
logs easy to ship to CloudWatch, ELK, or any other aggregation system.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (extractor, rules, pipeline, ...)
  - Instance ID and container name (for distributed tracing)
  - Tenant ID (which tenant context this log line concerns)
  - Decision ID (for correlating every stage of one pipeline run)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("pipeline")

Log messages with tenant and decision context:

	log.Info("mayo_central", "decision-456", "stage complete", map[string]interface{}{
	    "step": 2,
	})

Log errors with status codes:

	log.ErrorWithCode("mayo_central", "decision-456", "extraction failed", 500, err, nil)

Log with duration tracking:

	start := time.Now()
	// ... do work ...
	log.InfoWithDuration("mayo_central", "decision-456", "stage complete",
	    float64(time.Since(start).Milliseconds()), nil)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
