package domain

// CourseContent is one scraped course page. Loaded once at startup from
// course_content.json and never mutated afterwards.
type CourseContent struct {
	Filename   string `json:"-"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	RawContent string `json:"raw_content"`
}

// Topic is one Discourse forum thread with its posts in source-file order.
type Topic struct {
	ID    string `json:"-"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Posts []Post `json:"posts"`
}

// Post is a single forum post within a Topic. PostNumber is unique within the
// topic; ReplyTo is set when the post answers an earlier one.
type Post struct {
	PostNumber int    `json:"post_number"`
	Content    string `json:"content"`
	ReplyTo    *int   `json:"reply_to_post_number,omitempty"`
}

type QuestionRequest struct {
	Question string `json:"question"`
	// Image is an optional base64-encoded screenshot accompanying the question.
	Image string `json:"image,omitempty"`
}

type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}
