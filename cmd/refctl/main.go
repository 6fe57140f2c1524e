// Command refctl replays handle lifecycle scenarios and demonstrates shared
// ownership of wazero resources.
package main

func main() {
	execute()
}
