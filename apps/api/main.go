// Command api serves the PlanIt Kids HTTP API.
package main

func main() {
	startWithDig()
}
