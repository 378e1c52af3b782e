// Package models contains GORM persistence models for the stock take store.
// Domain types stay free of ORM tags; each model converts with ToDomain and
// a ...FromDomain constructor.
package models
