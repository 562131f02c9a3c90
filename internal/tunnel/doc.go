/*
Package tunnel - the gateway tunnel of a door session

1. Dialer / Tunnel - an authenticated transport to the gateway that can open one forwarded stream

2. Engine - drives a Tunnel through its states and hands the forwarded stream over

State diagram:

	Idle --> Connecting --> Ready --> Forwarding --> Closed
	             |            |           |            ^
	             +------------+-----------+---(error)--+

A Closed engine never reconnects. The caller exits the process once Run returns.
*/
package tunnel
