package main

import "github.com/probsamp/linemc/cmd"

// TODO: parallel stretch moves (red-black ensemble split) once EnsembleChain
//       append is factored out of the walker loop

// TODO: read a trace file back into memory so the compare report can run
//       offline against a previous run's retained draws

func main() {
	cmd.Execute()
}
