// Command rosterctl manages the student roster and its administrator
// accounts on any configured durable backend.
package main

func main() {
	execute()
}
