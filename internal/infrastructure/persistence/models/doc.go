// Package models contains GORM persistence models. They are kept apart
// from the fuel domain types so the domain stays free of ORM tags;
// each model carries its own mapping functions.
package models
