// @title Camera Detection Console API
// @version 1.0.0
// @description Web console for registering cameras with the detection backend and previewing their streams
// @BasePath /
package main

import "camdetect-ui/cmd"

func main() {
	cmd.Execute()
}
