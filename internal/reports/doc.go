// Package reports implements the reshape/aggregate pipeline behind every
// dashboard page. It turns raw QuickBooks-style summary exports (one row per
// entity, one column per month) into normalized long-form records, merges the
// per-year tables into a single dataset, and derives the aggregate tables and
// KPIs the chart and export layers consume.
//
// # Architecture
//
// The pipeline is a chain of small, pure stages:
//
//  1. Classifier: decides whether a raw row is a real entity or a
//     grouping/total/subtotal label to discard
//  2. Reshaper: melts one RawTable (wide, explicit-long, or interleaved
//     multi-metric) into LongRecords tagged with a year
//  3. Merge: concatenates per-year record sets in canonical year order
//  4. Aggregate: groups by any subset of {entity, month, year} and sums
//  5. TopN: ranks entities by summed measure and returns the leading subset
//  6. BuildSummary: computes the KPI row shown above the charts
//
// # Data Flow
//
//	CSV rows → Classifier → Reshaper → LongRecords → Merge → Dataset
//	                                   → Aggregate/TopN → AggregateTable → charts/export
//
// Every stage is deterministic and side-effect free; re-running the pipeline
// with the same inputs yields identical output. Failing to discard a total
// row would silently double every aggregate, so the classifier runs before
// any numeric work.
package reports
