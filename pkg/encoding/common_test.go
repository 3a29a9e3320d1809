package encoding

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
)

// testMessageJSON is a test structure to use for encoding tests using JSON.
type testMessageJSON struct {
	// Name represents a person's name.
	Name string
	// Age represents a person's age.
	Age uint
}

const (
	// testMessageJSONString is the JSON-encoded form of the JSON test data.
	testMessageJSONString = `{"Name":"George","Age":67}`
	// testMessageJSONName is the JSON test name.
	testMessageJSONName = "George"
	// testMessageJSONAge is the JSON test age.
	testMessageJSONAge = 67
)

func TestLoadAndUnmarshalNonExistentPath(t *testing.T) {
	if !os.IsNotExist(LoadAndUnmarshal("/this/does/not/exist", nil)) {
		t.Error("expected LoadAndUnmarshal to pass through non-existence errors")
	}
}

func TestLoadAndUnmarshalDirectory(t *testing.T) {
	if LoadAndUnmarshal(t.TempDir(), nil) == nil {
		t.Error("expected LoadAndUnmarshal error when loading directory")
	}
}

func TestLoadAndUnmarshalUnmarshalFail(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "pipforge_encoding")
	if err != nil {
		t.Fatal("unable to create temporary file:", err)
	}
	if err := file.Close(); err != nil {
		t.Fatal("unable to close temporary file:", err)
	}

	unmarshal := func(_ []byte) error {
		return errors.New("unmarshal failed")
	}

	if LoadAndUnmarshal(file.Name(), unmarshal) == nil {
		t.Error("expected LoadAndUnmarshal to return an error")
	}
}

func TestLoadAndUnmarshal(t *testing.T) {
	path := t.TempDir() + "/message.json"
	if err := os.WriteFile(path, []byte(testMessageJSONString), 0o600); err != nil {
		t.Fatal("unable to write test file:", err)
	}

	value := &testMessageJSON{}
	unmarshal := func(data []byte) error {
		return json.Unmarshal(data, value)
	}

	if err := LoadAndUnmarshal(path, unmarshal); err != nil {
		t.Fatal("LoadAndUnmarshal failed:", err)
	}
	if value.Name != testMessageJSONName {
		t.Error("test message name mismatch:", value.Name, "!=", testMessageJSONName)
	}
	if value.Age != testMessageJSONAge {
		t.Error("test message age mismatch:", value.Age, "!=", testMessageJSONAge)
	}
}

func TestMarshalAndSaveMarshalFail(t *testing.T) {
	marshal := func() ([]byte, error) {
		return nil, errors.New("marshal failed")
	}
	if MarshalAndSave(t.TempDir()+"/out", marshal) == nil {
		t.Error("expected MarshalAndSave to return an error")
	}
}

func TestMarshalAndSaveOverDirectory(t *testing.T) {
	marshal := func() ([]byte, error) {
		return []byte{0}, nil
	}
	if MarshalAndSave(t.TempDir(), marshal) == nil {
		t.Error("expected MarshalAndSave error when saving over a directory")
	}
}

func TestMarshalAndSave(t *testing.T) {
	path := t.TempDir() + "/message.json"
	value := &testMessageJSON{Name: testMessageJSONName, Age: testMessageJSONAge}
	marshal := func() ([]byte, error) {
		return json.Marshal(value)
	}

	if err := MarshalAndSave(path, marshal); err != nil {
		t.Fatal("MarshalAndSave failed:", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal("unable to read saved contents:", err)
	} else if string(contents) != testMessageJSONString {
		t.Error("marshaled contents do not match expected:", string(contents), "!=", testMessageJSONString)
	}
}
