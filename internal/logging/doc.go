// Package logging wires log/slog with the handlers and field conventions used
// across slidecast. Console output renders a header line plus indented detail
// fields; JSON output targets log aggregation. Standardized keys (component,
// job_id, phase, correlation_id) are promoted into the console header so a job's
// lifecycle reads as a narrative. WithContext derives those fields from
// context values set by the HTTP layer and the pipeline.
package logging
