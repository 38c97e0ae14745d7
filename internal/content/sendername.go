// internal/content/sendername.go
package content

import (
	"fmt"
	"math/rand"
)

// NameType selects the style of a generated sender display name.
type NameType string

const (
	NameTypeBusiness NameType = "business"
	NameTypePersonal NameType = "personal"
)

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "William", "Elizabeth", "David", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Christopher", "Karen",
	"Charles", "Nancy", "Daniel", "Lisa", "Matthew", "Betty", "Anthony",
	"Helen", "Mark", "Sandra", "Donald", "Donna", "Steven", "Carol",
	"Paul", "Ruth", "Andrew", "Sharon", "Joshua", "Michelle", "Kenneth",
	"Laura", "Kevin", "Brian", "Kimberly", "George", "Deborah", "Edward",
	"Dorothy", "Ronald", "Timothy", "Jason", "Jeffrey", "Ryan", "Jacob",
	"Gary", "Nicholas", "Eric", "Jonathan", "Stephen", "Larry", "Justin",
	"Scott", "Brandon", "Benjamin", "Samuel", "Amy", "Gregory", "Angela",
	"Alexander", "Ashley", "Patrick", "Brenda", "Frank", "Emma",
	"Raymond", "Olivia", "Jack", "Cynthia", "Dennis", "Marie", "Jerry",
	"Janet", "Tyler", "Catherine", "Aaron", "Frances", "Jose",
	"Christine", "Henry", "Samantha", "Adam", "Debra", "Douglas",
	"Rachel", "Nathan", "Carolyn", "Peter", "Virginia", "Zachary",
	"Martha", "Kyle", "Rebecca",
}

var businessSuffixes = []string{
	"Foundation", "Fdn", "Consulting", "Co", "Services", "Ltd",
	"Instituto", "Institute", "Corp.", "Trustees", "Incorporated",
	"Technologies", "Assoc.", "Trustee", "Company", "Industries", "LLP",
	"Corp", "Assoc", "Associazione", "Trust", "Solutions", "Group",
	"Associa", "Corporation", "Trusts", "Corpo", "Inc", "PC", "LLC",
	"Institutes", "Associates",
}

var randomLetters = []string{
	"CS", "BT", "AU", "WO", "TF", "KL", "MN", "RT", "PQ", "XY", "ZW",
	"VU", "ST", "GH", "JK", "DF",
}

var businessWords = []string{
	"Wood", "Steel", "Tech", "Digital", "Global", "Prime", "Elite",
	"Advanced", "Smart", "Future", "Modern", "Royal", "Supreme",
	"Premier", "First", "Capital", "United", "Central", "National",
	"International", "Universal", "Strategic", "Professional", "Creative",
	"Innovative", "Dynamic", "Optimal", "Superior", "Excellence",
	"Quality", "Success", "Progress", "Vision", "Leader", "Master",
	"Expert", "Secure", "Reliable", "Trusted", "Proven", "Effective",
	"Efficient",
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateSenderName produces a display name in the requested style.
// Unknown types fall back to business names.
func GenerateSenderName(r *rand.Rand, t NameType) string {
	if t == NameTypePersonal {
		return generatePersonalName(r)
	}
	return generateBusinessName(r)
}

// business name: FirstName + Letters + BusinessWord + Letters + Suffix
func generateBusinessName(r *rand.Rand) string {
	return fmt.Sprintf("%s %s %s %s %s",
		firstNames[r.Intn(len(firstNames))],
		randomLetters[r.Intn(len(randomLetters))],
		businessWords[r.Intn(len(businessWords))],
		randomLetters[r.Intn(len(randomLetters))],
		businessSuffixes[r.Intn(len(businessSuffixes))],
	)
}

// personal name: FirstName + two initials
func generatePersonalName(r *rand.Rand) string {
	return fmt.Sprintf("%s %c. %c.",
		firstNames[r.Intn(len(firstNames))],
		alphabet[r.Intn(len(alphabet))],
		alphabet[r.Intn(len(alphabet))],
	)
}
