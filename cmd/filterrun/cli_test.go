package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadScriptInline(t *testing.T) {
	if err := runCmd.Flags().Set("code", `function main(){ return "x"; }`); err != nil {
		t.Fatal(err)
	}
	defer runCmd.Flags().Set("code", "")

	got := readScript(runCmd, nil)
	if got != `function main(){ return "x"; }` {
		t.Errorf("unexpected script: %q", got)
	}
}

func TestReadScriptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.js")
	if err := os.WriteFile(path, []byte("function main(){}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := readScript(runCmd, []string{path})
	if got != "function main(){}" {
		t.Errorf("unexpected script: %q", got)
	}
}

func TestCallbackNamesDefault(t *testing.T) {
	want := []string{"emit"}
	if got := callbackNames(runCmd); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
