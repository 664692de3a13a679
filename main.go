package main

import "postboard/service"

func main() {
	service.Execute()
}
