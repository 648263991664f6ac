// Package testutil provides shared helpers for package tests.
package testutil
