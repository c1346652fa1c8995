// Package dataset loads benchmark datasets stored as newline-delimited JSON.
package dataset
