package main

import "github.com/emotionflow/emotion-timeline/cli"

func main() {
	cli.Execute()
}
