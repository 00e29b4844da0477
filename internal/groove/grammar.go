package groove

// Grammar is the Lark grammar for drum grid programs:
//
//	pattern(drum=kick, grid="x---x---x---x---")
//	pattern(drum=snare, grid="----x-------x---", velocity=100)
//
// Calls are separated by ";". Each grid character is one 16th note.
const Grammar = `
// ---------- Start rule ----------
start: pattern_call (";" pattern_call)*

// ---------- Pattern ----------
pattern_call: "pattern" "(" pattern_params ")"

pattern_params: pattern_named_params

pattern_named_params: pattern_named_param ("," SP pattern_named_param)*
pattern_named_param: "drum" "=" DRUM_NAME
                   | "grid" "=" STRING
                   | "velocity" "=" NUMBER

// ---------- Drum names ----------
DRUM_NAME: "kick" | "snare" | "snare_rim" | "snare_xstick"
         | "hat" | "hat_open" | "hat_pedal"
         | "tom_high" | "tom_mid" | "tom_low"
         | "crash" | "ride" | "ride_bell" | "china" | "splash"
         | "cowbell" | "tambourine" | "clap" | "snap" | "shaker"

// ---------- Terminals ----------
SP: " "+
STRING: /"[^"]*"/
NUMBER: /-?\d+(\.\d+)?/
`
