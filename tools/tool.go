package tools

import (
	"io/ioutil"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// ToAddressString - return "$host:$port"
func ToAddressString(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// PathExist - return whether exist of path
func PathExist(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	return false
}

// ProgramDir - directory holding the running executable,
// falls back to the working directory if it cannot be resolved
func ProgramDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err2 := filepath.EvalSymlinks(exe); err2 == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// ReadOrCreateFile - read from config file, and return the file content
// if path not exist, will create the path and call `f()` to write to the file.
func ReadOrCreateFile(path string, f func() []byte) ([]byte, error) {
	if PathExist(path) {
		content, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return content, nil
	}
	content := f()
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	file, err2 := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err2 != nil {
		return nil, err2
	}
	defer file.Close()
	if _, err3 := file.Write(content); err3 != nil {
		return nil, err3
	}
	return content, nil
}

// LogAndExitIfErr - will log and exit if err != nil
func LogAndExitIfErr(err error) {
	if err != nil {
		log.Fatalf("error: %s\n", err.Error())
	}
}
