package main

import (
	"flag"
	"log"
	"net/http"
)

// A minimal page that triggers a preflighted cross-origin POST against the
// myflix login endpoint and writes the response into the <div id="output"> tag.
const html = `
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
</head>
<body>
<h1>Preflight CORS</h1>
<div id="output"></div>
<script>
document.addEventListener('DOMContentLoaded', function() {
    fetch("http://localhost:8000/login", {
        method: "POST",
        headers: {
            'Content-Type': 'application/json'
        },
        body: JSON.stringify({
            username: 'alice',
            password: 'pa55word'
        })
    }).then(
        function (response) {
            response.text().then(function (text) {
                document.getElementById("output").innerHTML = text;
            });
        },
        function(err) {
            document.getElementById("output").innerHTML = err;
        }
    );
});
</script>
</body>
</html>`

func main() {
	addr := flag.String("addr", ":9000", "Server address")
	flag.Parse()

	log.Printf("starting server on %s", *addr)

	err := http.ListenAndServe(*addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	log.Fatal(err)
}
