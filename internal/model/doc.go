// Package model defines the scoring model: component weights, risk bands,
// seasonal calendar, pattern thresholds, and the intervention and economic
// parameters the planner prices with.
//
// Models are written in CUE and compiled through the CUE SDK. A model ships
// embedded as the default; operators override it with --model to re-weight
// components or re-tune thresholds without rebuilding. Every compiled model
// carries a content digest so reports record exactly which parameters
// produced them.
package model
