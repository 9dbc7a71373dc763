// Package models contains the GORM persistence models for the receivable
// documents the settlement engine reads. They are kept apart from the domain
// types so the domain stays free of ORM tags; each model converts itself to
// a settlement.LedgerRow.
package models
