package main

import (
	"testing"

	"github.com/gitrdm/judged/pkg/extension"
)

func TestModuleRegistryResolveUnknown(t *testing.T) {
	r := newModuleRegistry()
	if _, err := r.Resolve("sql"); err == nil {
		t.Error("expected an error resolving an unregistered module, got nil")
	}
}

func TestModuleRegistryRegisterAndResolve(t *testing.T) {
	r := newModuleRegistry()
	ext := &extension.Extension{Name: "sql"}
	r.Register(ext)

	got, err := r.Resolve("sql")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != ext {
		t.Errorf("Resolve returned a different extension than the one registered")
	}
}
