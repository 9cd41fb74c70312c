package main

import "go.dedis.ch/onet/v3/simul"

func main() {
	simul.Start()
}
