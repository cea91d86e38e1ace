package catalogue

var builtin = New(
	Entry{ID: CPP, Icon: "C++", Snippet: `#include <iostream>

int main() {
    std::cout << "Hello, World!" << std::endl;
    return 0;
}
`},
	Entry{ID: C, Icon: "C", Snippet: `#include <stdio.h>

int main(void) {
    printf("Hello, World!\n");
    return 0;
}
`},
	Entry{ID: Java, Icon: "☕", Snippet: `public class Main {
    public static void main(String[] args) {
        System.out.println("Hello, World!");
    }
}
`},
	Entry{ID: Python, Icon: "🐍", Snippet: `print("Hello, World!")
`},
	Entry{ID: Ruby, Icon: "💎", Snippet: `puts "Hello, World!"
`},
	Entry{ID: NodeJS, Icon: "JS", Snippet: `console.log("Hello, World!");
`},
	Entry{ID: Go, Icon: "🐹", Snippet: `package main

import "fmt"

func main() {
	fmt.Println("Hello, World!")
}
`},
	Entry{ID: CSharp, Icon: "C#", Snippet: `using System;

class Program {
    static void Main() {
        Console.WriteLine("Hello, World!");
    }
}
`},
	Entry{ID: Kotlin, Icon: "K", Snippet: `fun main() {
    println("Hello, World!")
}
`},
)
